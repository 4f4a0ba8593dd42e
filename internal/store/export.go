package store

import "github.com/Humans-Not-Required/agent-chat/internal/chatcore"

// ExportFilter narrows ExportMessages. After/Before are ISO-8601 created_at
// bounds (export filters by wall-clock time, not seq, since it's meant for
// human-facing date ranges).
type ExportFilter struct {
	After  string
	Before string
	Sender string
	Limit  int64
}

const exportMaxLimit = int64(10000)

func (f ExportFilter) effectiveLimit() int64 {
	if f.Limit <= 0 || f.Limit > exportMaxLimit {
		return exportMaxLimit
	}
	return f.Limit
}

// ExportMessages returns room messages ASC by seq, for rendering into the
// export formats. Unlike ListMessages, it is not paginated by seq cursor and
// allows up to exportMaxLimit rows in one call.
func (s *Store) ExportMessages(roomID string, f ExportFilter) ([]chatcore.Message, error) {
	query := `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE room_id = ?`
	args := []interface{}{roomID}

	if f.Sender != "" {
		query += ` AND sender = ?`
		args = append(args, f.Sender)
	}
	if f.After != "" {
		query += ` AND created_at > ?`
		args = append(args, f.After)
	}
	if f.Before != "" {
		query += ` AND created_at < ?`
		args = append(args, f.Before)
	}
	query += ` ORDER BY seq ASC LIMIT ?`
	args = append(args, f.effectiveLimit())

	var out []chatcore.Message
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

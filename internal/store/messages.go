package store

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// NewMessageInput carries the validated fields send_message needs to
// persist a message; validation itself lives in internal/messaging.
type NewMessageInput struct {
	RoomID     string
	Sender     string
	SenderType *string
	Content    string
	Metadata   json.RawMessage
	ReplyTo    *string
}

// nextSeqLocked allocates the next global seq inside tx. Reached through
// InsertMessage and NextSeq, so callers never need to manage the
// transaction directly.
func nextSeqLocked(tx *sqlx.Tx) (int64, error) {
	var seq int64
	if err := tx.Get(&seq, `SELECT COALESCE(MAX(seq), 0) + 1 FROM messages`); err != nil {
		return 0, err
	}
	return seq, nil
}

// NextSeq reports the seq InsertMessage would currently allocate, taking the
// write lock the same way. Exists so tests can assert monotonicity directly
// against the store without going through the HTTP layer.
func (s *Store) NextSeq() (int64, error) {
	var seq int64
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		var innerErr error
		seq, innerErr = nextSeqLocked(tx)
		return innerErr
	})
	if err != nil {
		return 0, chatcore.Internal(err)
	}
	return seq, nil
}

// InsertMessage allocates seq, inserts the message, refreshes the owning
// room's updated_at, and upserts the FTS row, all within one transaction.
func (s *Store) InsertMessage(in NewMessageInput) (chatcore.Message, error) {
	if in.Metadata == nil {
		in.Metadata = json.RawMessage(`{}`)
	}
	msg := chatcore.Message{
		ID:         newID(),
		RoomID:     in.RoomID,
		Sender:     in.Sender,
		SenderType: in.SenderType,
		Content:    in.Content,
		Metadata:   in.Metadata,
		ReplyTo:    in.ReplyTo,
	}
	now := nowRFC3339()
	msg.CreatedAt = now

	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		seq, err := nextSeqLocked(tx)
		if err != nil {
			return translateErr(err)
		}
		msg.Seq = seq

		_, err = tx.Exec(
			`INSERT INTO messages (id, room_id, sender, sender_type, content, metadata, created_at, reply_to, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.RoomID, msg.Sender, msg.SenderType, msg.Content, string(msg.Metadata), msg.CreatedAt, msg.ReplyTo, msg.Seq,
		)
		if err != nil {
			return translateErr(err)
		}
		if _, err := tx.Exec(`UPDATE rooms SET updated_at = ? WHERE id = ?`, now, msg.RoomID); err != nil {
			return translateErr(err)
		}
		if err := ftsUpsertTx(tx, msg.ID, msg.Content, msg.Sender); err != nil {
			return translateErr(err)
		}
		return pruneRoomLocked(tx, msg.RoomID)
	})
	if err != nil {
		return chatcore.Message{}, err
	}
	return msg, nil
}

// pruneRoomLocked enforces a room's optional max_messages/
// max_message_age_hours retention settings, deleting overflow messages
// (cascading reactions and edits, and clearing their FTS rows).
func pruneRoomLocked(tx *sqlx.Tx, roomID string) error {
	var maxMessages, maxAgeHours sql.NullInt64
	if err := tx.QueryRow(`SELECT max_messages, max_message_age_hours FROM rooms WHERE id = ?`, roomID).
		Scan(&maxMessages, &maxAgeHours); err != nil {
		return err
	}
	if !maxMessages.Valid && !maxAgeHours.Valid {
		return nil
	}

	var staleIDs []string
	if maxAgeHours.Valid {
		rows, err := tx.Query(
			`SELECT id FROM messages WHERE room_id = ? AND created_at < datetime('now', ?)`,
			roomID, "-"+strconv.FormatInt(maxAgeHours.Int64, 10)+" hours",
		)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			staleIDs = append(staleIDs, id)
		}
		rows.Close()
	}
	if maxMessages.Valid {
		rows, err := tx.Query(
			`SELECT id FROM messages WHERE room_id = ? ORDER BY seq DESC LIMIT -1 OFFSET ?`,
			roomID, maxMessages.Int64,
		)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			staleIDs = append(staleIDs, id)
		}
		rows.Close()
	}
	for _, id := range dedupe(staleIDs) {
		if _, err := tx.Exec(`DELETE FROM messages_fts WHERE message_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM messages WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// GetMessage fetches a single message in a room.
func (s *Store) GetMessage(roomID, messageID string) (chatcore.Message, error) {
	var m chatcore.Message
	err := s.db.Get(&m, `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE id = ? AND room_id = ?`, messageID, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return chatcore.Message{}, chatcore.NotFound("message not found")
		}
		return chatcore.Message{}, chatcore.Internal(err)
	}
	return m, nil
}

// EditMessage appends a MessageEdit, updates content/edited_at/metadata,
// and refreshes FTS. seq, room_id, sender, created_at never change.
func (s *Store) EditMessage(roomID, messageID, editor, content string, metadata json.RawMessage) (chatcore.Message, error) {
	var out chatcore.Message
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		var prevContent, sender string
		if err := tx.QueryRow(`SELECT content, sender FROM messages WHERE id = ? AND room_id = ?`, messageID, roomID).
			Scan(&prevContent, &sender); err != nil {
			if err == sql.ErrNoRows {
				return chatcore.NotFound("message not found")
			}
			return chatcore.Internal(err)
		}
		now := nowRFC3339()
		if _, err := tx.Exec(
			`INSERT INTO message_edits (id, message_id, previous_content, edited_at, editor) VALUES (?, ?, ?, ?, ?)`,
			newID(), messageID, prevContent, now, editor,
		); err != nil {
			return translateErr(err)
		}

		if metadata != nil {
			_, err := tx.Exec(`UPDATE messages SET content = ?, edited_at = ?, metadata = ? WHERE id = ?`,
				content, now, string(metadata), messageID)
			if err != nil {
				return translateErr(err)
			}
		} else {
			_, err := tx.Exec(`UPDATE messages SET content = ?, edited_at = ? WHERE id = ?`, content, now, messageID)
			if err != nil {
				return translateErr(err)
			}
		}
		if err := ftsUpsertTx(tx, messageID, content, sender); err != nil {
			return translateErr(err)
		}
		return nil
	})
	if err != nil {
		return chatcore.Message{}, err
	}
	out, err = s.GetMessage(roomID, messageID)
	return out, err
}

// DeleteMessage removes the FTS row then the message (reactions cascade).
func (s *Store) DeleteMessage(roomID, messageID string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM messages_fts WHERE message_id = ?`, messageID); err != nil {
			return translateErr(err)
		}
		res, err := tx.Exec(`DELETE FROM messages WHERE id = ? AND room_id = ?`, messageID, roomID)
		if err != nil {
			return translateErr(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return chatcore.NotFound("message not found")
		}
		return nil
	})
}

// PinMessage sets pinned_at/pinned_by; fails Conflict if already pinned.
func (s *Store) PinMessage(roomID, messageID, pinnedBy string) (chatcore.Message, error) {
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		var pinnedAt sql.NullString
		if err := tx.QueryRow(`SELECT pinned_at FROM messages WHERE id = ? AND room_id = ?`, messageID, roomID).
			Scan(&pinnedAt); err != nil {
			if err == sql.ErrNoRows {
				return chatcore.NotFound("message not found")
			}
			return chatcore.Internal(err)
		}
		if pinnedAt.Valid {
			return chatcore.Conflict("message already pinned")
		}
		_, err := tx.Exec(`UPDATE messages SET pinned_at = ?, pinned_by = ? WHERE id = ?`, nowRFC3339(), pinnedBy, messageID)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Message{}, err
	}
	return s.GetMessage(roomID, messageID)
}

// UnpinMessage clears pinned_at/pinned_by; fails Invalid if not pinned.
func (s *Store) UnpinMessage(roomID, messageID string) (chatcore.Message, error) {
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		var pinnedAt sql.NullString
		if err := tx.QueryRow(`SELECT pinned_at FROM messages WHERE id = ? AND room_id = ?`, messageID, roomID).
			Scan(&pinnedAt); err != nil {
			if err == sql.ErrNoRows {
				return chatcore.NotFound("message not found")
			}
			return chatcore.Internal(err)
		}
		if !pinnedAt.Valid {
			return chatcore.Invalid("message is not pinned")
		}
		_, err := tx.Exec(`UPDATE messages SET pinned_at = NULL, pinned_by = NULL WHERE id = ?`, messageID)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Message{}, err
	}
	return s.GetMessage(roomID, messageID)
}

// ListPinned returns pinned messages in a room, newest pin first.
func (s *Store) ListPinned(roomID string) ([]chatcore.Message, error) {
	var out []chatcore.Message
	err := s.db.Select(&out, `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE room_id = ? AND pinned_at IS NOT NULL ORDER BY pinned_at DESC`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// ListEdits returns the edit history of a message, oldest first.
func (s *Store) ListEdits(messageID string) ([]chatcore.MessageEdit, error) {
	var out []chatcore.MessageEdit
	err := s.db.Select(&out, `SELECT id, message_id, previous_content, edited_at, editor
		FROM message_edits WHERE message_id = ? ORDER BY edited_at ASC`, messageID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// MessageExists reports whether a message with this id exists in roomID,
// used to validate reply_to targets.
func (s *Store) MessageExists(roomID, messageID string) (bool, error) {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM messages WHERE id = ? AND room_id = ?`, messageID, roomID); err != nil {
		return false, chatcore.Internal(err)
	}
	return count > 0, nil
}

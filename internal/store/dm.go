package store

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// GetOrCreateDMRoom looks up the deterministic DM room by name, creating it
// if absent. created reports whether this call created it.
func (s *Store) GetOrCreateDMRoom(name, description string) (room chatcore.Room, created bool, err error) {
	room, found, err := s.GetRoomByName(name)
	if err != nil {
		return chatcore.Room{}, false, err
	}
	if found {
		return room, false, nil
	}

	room = chatcore.Room{
		ID:          newID(),
		Name:        name,
		Description: description,
		CreatedBy:   "system",
		RoomType:    "dm",
		AdminKey:    newAdminKey(),
	}
	now := nowRFC3339()
	room.CreatedAt, room.UpdatedAt = now, now

	err = s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO rooms (id, name, description, created_by, created_at, updated_at, admin_key, room_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, 'dm')`,
			room.ID, room.Name, room.Description, room.CreatedBy, room.CreatedAt, room.UpdatedAt, room.AdminKey)
		if err != nil && isUniqueViolation(err) {
			// lost the race to create this DM room; fall through and re-fetch
			return nil
		}
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Room{}, false, err
	}

	final, found, err := s.GetRoomByName(name)
	if err != nil {
		return chatcore.Room{}, false, err
	}
	if !found {
		return chatcore.Room{}, false, chatcore.Internal(sql.ErrNoRows)
	}
	return final, final.ID == room.ID, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	ce := translateErr(err)
	e, ok := chatcore.As(ce)
	return ok && e.Kind == chatcore.KindConflict
}

// DMConversation is one row of a sender's DM conversation list.
type DMConversation struct {
	RoomID             string  `db:"room_id"`
	OtherParticipant   string  `db:"other_participant"`
	MessageCount       int64   `db:"message_count"`
	LastMessageAt      *string `db:"last_message_at"`
	LastMessagePreview *string `db:"last_message_preview"`
	UnreadCount        int64   `db:"unread_count"`
}

// ListDMConversations finds DM rooms involving sender and enriches each
// with the other participant, activity, and unread count.
func (s *Store) ListDMConversations(sender string) ([]DMConversation, error) {
	var rooms []chatcore.Room
	err := s.db.Select(&rooms, `SELECT id, name, description, created_by, created_at, updated_at,
		'' as admin_key, archived_at, room_type, max_messages, max_message_age_hours
		FROM rooms WHERE room_type = 'dm' AND (name LIKE ? OR name LIKE ?)`,
		"dm:"+sender+":%", "dm:%:"+sender)

	if err != nil {
		return nil, chatcore.Internal(err)
	}

	out := make([]DMConversation, 0, len(rooms))
	for _, r := range rooms {
		other := otherParticipant(r.Name, sender)
		if other == "" {
			continue
		}
		var conv DMConversation
		conv.RoomID = r.ID
		conv.OtherParticipant = other

		if err := s.db.Get(&conv.MessageCount, `SELECT COUNT(*) FROM messages WHERE room_id = ?`, r.ID); err != nil {
			return nil, chatcore.Internal(err)
		}
		var lastAt, lastContent sql.NullString
		_ = s.db.QueryRow(`SELECT created_at, substr(content,1,200) FROM messages WHERE room_id = ? ORDER BY seq DESC LIMIT 1`, r.ID).
			Scan(&lastAt, &lastContent)
		if lastAt.Valid {
			conv.LastMessageAt = &lastAt.String
		}
		if lastContent.Valid {
			conv.LastMessagePreview = &lastContent.String
		}

		rp, err := s.GetReadPosition(r.ID, sender)
		if err != nil {
			return nil, err
		}
		if err := s.db.Get(&conv.UnreadCount, `SELECT COUNT(*) FROM messages WHERE room_id = ? AND seq > ?`,
			r.ID, rp.LastReadSeq); err != nil {
			return nil, chatcore.Internal(err)
		}
		out = append(out, conv)
	}
	return out, nil
}

// otherParticipant extracts the counterpart name from a canonical
// "dm:<a>:<b>" room name given the current sender, matching case-
// insensitively as the canonical name itself is lowercase-normalized.
func otherParticipant(roomName, sender string) string {
	const prefix = "dm:"
	if len(roomName) <= len(prefix) {
		return ""
	}
	rest := roomName[len(prefix):]
	sep := -1
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			sep = i
			break
		}
	}
	if sep == -1 {
		return ""
	}
	a, b := rest[:sep], rest[sep+1:]
	lowerSender := strings.ToLower(sender)
	switch {
	case strings.ToLower(a) == lowerSender:
		return b
	case strings.ToLower(b) == lowerSender:
		return a
	default:
		return ""
	}
}

package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// CreateRoom inserts a new room and returns it with admin_key populated
// (the only time the key is ever returned).
func (s *Store) CreateRoom(name, description, createdBy string) (chatcore.Room, error) {
	room := chatcore.Room{
		ID:          newID(),
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		RoomType:    "room",
		AdminKey:    newAdminKey(),
	}
	now := nowRFC3339()
	room.CreatedAt, room.UpdatedAt = now, now

	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO rooms (id, name, description, created_by, created_at, updated_at, admin_key, room_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 'room')`,
			room.ID, room.Name, room.Description, room.CreatedBy, room.CreatedAt, room.UpdatedAt, room.AdminKey,
		)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id without the admin_key.
func (s *Store) GetRoom(id string) (chatcore.Room, error) {
	var r chatcore.Room
	err := s.db.Get(&r, `SELECT id, name, description, created_by, created_at, updated_at,
		'' as admin_key, archived_at, room_type, max_messages, max_message_age_hours
		FROM rooms WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return chatcore.Room{}, chatcore.NotFound("room not found")
		}
		return chatcore.Room{}, chatcore.Internal(err)
	}
	return r, nil
}

// GetRoomWithAdminKey fetches a room including admin_key, used internally
// to authorize admin-gated operations.
func (s *Store) GetRoomWithAdminKey(id string) (chatcore.Room, error) {
	var r chatcore.Room
	err := s.db.Get(&r, `SELECT id, name, description, created_by, created_at, updated_at,
		admin_key, archived_at, room_type, max_messages, max_message_age_hours
		FROM rooms WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return chatcore.Room{}, chatcore.NotFound("room not found")
		}
		return chatcore.Room{}, chatcore.Internal(err)
	}
	return r, nil
}

// GetRoomByName looks up a room (any type) by its unique name.
func (s *Store) GetRoomByName(name string) (chatcore.Room, bool, error) {
	var r chatcore.Room
	err := s.db.Get(&r, `SELECT id, name, description, created_by, created_at, updated_at,
		admin_key, archived_at, room_type, max_messages, max_message_age_hours
		FROM rooms WHERE name = ?`, name)
	if err == sql.ErrNoRows {
		return chatcore.Room{}, false, nil
	}
	if err != nil {
		return chatcore.Room{}, false, chatcore.Internal(err)
	}
	return r, true, nil
}

// RoomListFilter narrows ListRooms.
type RoomListFilter struct {
	IncludeArchived bool
	Sender          string // if set, bookmarked flag and bookmark-first ordering apply
}

// ListRooms returns non-DM rooms, newest activity first (bookmarked rooms
// first when Sender is set), each decorated with message_count and last
// activity/sender/preview.
func (s *Store) ListRooms(f RoomListFilter) ([]chatcore.RoomWithStats, error) {
	query := `
		SELECT r.id, r.name, r.description, r.created_by, r.created_at, r.updated_at,
		       '' as admin_key, r.archived_at, r.room_type, r.max_messages, r.max_message_age_hours,
		       COUNT(m.id) as message_count,
		       MAX(m.created_at) as last_activity,
		       (SELECT sender FROM messages WHERE room_id = r.id ORDER BY seq DESC LIMIT 1) as last_message_sender,
		       (SELECT substr(content, 1, 200) FROM messages WHERE room_id = r.id ORDER BY seq DESC LIMIT 1) as last_message_preview`
	if f.Sender != "" {
		query += `, EXISTS(SELECT 1 FROM bookmarks b WHERE b.room_id = r.id AND b.sender = ?) as bookmarked`
	}
	query += ` FROM rooms r LEFT JOIN messages m ON m.room_id = r.id WHERE r.room_type = 'room'`

	var args []interface{}
	if f.Sender != "" {
		args = append(args, f.Sender)
	}
	if !f.IncludeArchived {
		query += ` AND r.archived_at IS NULL`
	}
	query += ` GROUP BY r.id`
	if f.Sender != "" {
		query += ` ORDER BY bookmarked DESC, last_activity DESC`
	} else {
		query += ` ORDER BY last_activity DESC`
	}

	rows, err := s.db.Queryx(query, args...)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	defer rows.Close()

	out := []chatcore.RoomWithStats{}
	for rows.Next() {
		var rw chatcore.RoomWithStats
		if f.Sender != "" {
			var bookmarked bool
			if err := rows.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.CreatedBy, &rw.CreatedAt, &rw.UpdatedAt,
				&rw.AdminKey, &rw.ArchivedAt, &rw.RoomType, &rw.MaxMessages, &rw.MaxMessageAgeHrs,
				&rw.MessageCount, &rw.LastActivity, &rw.LastMessageSender, &rw.LastMessagePreview, &bookmarked); err != nil {
				return nil, chatcore.Internal(err)
			}
			rw.Bookmarked = &bookmarked
		} else {
			if err := rows.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.CreatedBy, &rw.CreatedAt, &rw.UpdatedAt,
				&rw.AdminKey, &rw.ArchivedAt, &rw.RoomType, &rw.MaxMessages, &rw.MaxMessageAgeHrs,
				&rw.MessageCount, &rw.LastActivity, &rw.LastMessageSender, &rw.LastMessagePreview); err != nil {
				return nil, chatcore.Internal(err)
			}
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

// UpdateRoom patches name/description/retention fields; nil pointers leave
// the existing value unchanged.
func (s *Store) UpdateRoom(id string, name, description *string, maxMessages, maxMessageAgeHrs **int64) (chatcore.Room, error) {
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		if name != nil {
			if _, err := tx.Exec(`UPDATE rooms SET name = ? WHERE id = ?`, *name, id); err != nil {
				return translateErr(err)
			}
		}
		if description != nil {
			if _, err := tx.Exec(`UPDATE rooms SET description = ? WHERE id = ?`, *description, id); err != nil {
				return translateErr(err)
			}
		}
		if maxMessages != nil {
			if _, err := tx.Exec(`UPDATE rooms SET max_messages = ? WHERE id = ?`, *maxMessages, id); err != nil {
				return translateErr(err)
			}
		}
		if maxMessageAgeHrs != nil {
			if _, err := tx.Exec(`UPDATE rooms SET max_message_age_hours = ? WHERE id = ?`, *maxMessageAgeHrs, id); err != nil {
				return translateErr(err)
			}
		}
		_, err := tx.Exec(`UPDATE rooms SET updated_at = ? WHERE id = ?`, nowRFC3339(), id)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Room{}, err
	}
	return s.GetRoom(id)
}

// SetRoomArchived flips archived_at on or off.
func (s *Store) SetRoomArchived(id string, archived bool) (chatcore.Room, error) {
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		var err error
		if archived {
			_, err = tx.Exec(`UPDATE rooms SET archived_at = ?, updated_at = ? WHERE id = ?`, nowRFC3339(), nowRFC3339(), id)
		} else {
			_, err = tx.Exec(`UPDATE rooms SET archived_at = NULL, updated_at = ? WHERE id = ?`, nowRFC3339(), id)
		}
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Room{}, err
	}
	return s.GetRoom(id)
}

// DeleteRoom removes a room; ON DELETE CASCADE takes its messages, reactions
// (via messages), files, webhooks, incoming webhooks, bookmarks and read
// positions with it.
func (s *Store) DeleteRoom(id string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		// FTS rows must go first: once the room row is deleted the FK
		// cascade removes the messages this subquery depends on.
		if _, err := tx.Exec(`DELETE FROM messages_fts WHERE message_id IN (
			SELECT id FROM messages WHERE room_id = ?)`, id); err != nil {
			return translateErr(err)
		}
		res, err := tx.Exec(`DELETE FROM rooms WHERE id = ?`, id)
		if err != nil {
			return translateErr(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return chatcore.NotFound("room not found")
		}
		return nil
	})
}

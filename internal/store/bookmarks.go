package store

import (
	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// AddBookmark is an idempotent insert: a second call for the same
// (room_id, sender) leaves exactly one row.
func (s *Store) AddBookmark(roomID, sender string) (chatcore.Bookmark, error) {
	b := chatcore.Bookmark{RoomID: roomID, Sender: sender, CreatedAt: nowRFC3339()}
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO bookmarks (room_id, sender, created_at) VALUES (?, ?, ?)
			ON CONFLICT(room_id, sender) DO NOTHING`, b.RoomID, b.Sender, b.CreatedAt)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Bookmark{}, err
	}
	return b, nil
}

// RemoveBookmark deletes a bookmark; missing rows are not an error.
func (s *Store) RemoveBookmark(roomID, sender string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`DELETE FROM bookmarks WHERE room_id = ? AND sender = ?`, roomID, sender)
		return translateErr(err)
	})
}

// ListBookmarks returns a sender's bookmarked room ids, newest first.
func (s *Store) ListBookmarks(sender string) ([]chatcore.Bookmark, error) {
	var out []chatcore.Bookmark
	err := s.db.Select(&out, `SELECT room_id, sender, created_at FROM bookmarks
		WHERE sender = ? ORDER BY created_at DESC`, sender)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

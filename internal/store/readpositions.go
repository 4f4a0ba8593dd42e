package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// SetReadPosition upserts (room_id, sender) → max(old, new) last_read_seq,
// enforcing the monotonicity invariant server-side.
func (s *Store) SetReadPosition(roomID, sender string, seq int64) (chatcore.ReadPosition, error) {
	var out chatcore.ReadPosition
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		now := nowRFC3339()
		_, err := tx.Exec(`
			INSERT INTO read_positions (room_id, sender, last_read_seq, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(room_id, sender) DO UPDATE SET
				last_read_seq = MAX(last_read_seq, excluded.last_read_seq),
				updated_at = excluded.updated_at`,
			roomID, sender, seq, now)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.ReadPosition{}, err
	}
	err = s.db.Get(&out, `SELECT room_id, sender, last_read_seq, updated_at FROM read_positions
		WHERE room_id = ? AND sender = ?`, roomID, sender)
	if err != nil {
		return chatcore.ReadPosition{}, chatcore.Internal(err)
	}
	return out, nil
}

// GetReadPosition fetches a sender's read position in a room, or
// last_read_seq=0 if none has been recorded.
func (s *Store) GetReadPosition(roomID, sender string) (chatcore.ReadPosition, error) {
	var out chatcore.ReadPosition
	err := s.db.Get(&out, `SELECT room_id, sender, last_read_seq, updated_at FROM read_positions
		WHERE room_id = ? AND sender = ?`, roomID, sender)
	if err == sql.ErrNoRows {
		return chatcore.ReadPosition{RoomID: roomID, Sender: sender, LastReadSeq: 0}, nil
	}
	if err != nil {
		return chatcore.ReadPosition{}, chatcore.Internal(err)
	}
	return out, nil
}

// UnreadRoomSummary is one room's unread backlog for a sender.
type UnreadRoomSummary struct {
	RoomID      string `db:"room_id"`
	RoomName    string `db:"room_name"`
	UnreadCount int64  `db:"unread_count"`
	LastReadSeq int64  `db:"last_read_seq"`
	LatestSeq   int64  `db:"latest_seq"`
}

// Unread reports, for every room with activity, the unread message count
// for sender relative to their stored read position.
func (s *Store) Unread(sender string) ([]UnreadRoomSummary, error) {
	var out []UnreadRoomSummary
	err := s.db.Select(&out, `
		SELECT r.id as room_id, r.name as room_name,
		       COUNT(m.id) as unread_count,
		       COALESCE(rp.last_read_seq, 0) as last_read_seq,
		       MAX(m.seq) as latest_seq
		FROM rooms r
		JOIN messages m ON m.room_id = r.id
		LEFT JOIN read_positions rp ON rp.room_id = r.id AND rp.sender = ?
		WHERE m.seq > COALESCE(rp.last_read_seq, 0)
		GROUP BY r.id, r.name, rp.last_read_seq
		ORDER BY latest_seq DESC`, sender)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

package store

import (
	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// ToggleReaction inserts a reaction, or removes it if the same
// (message_id, sender, emoji) already exists. Returns added=true when a
// row was inserted, false when one was removed.
func (s *Store) ToggleReaction(roomID, messageID, sender, emoji string) (reaction chatcore.Reaction, added bool, err error) {
	err = s.withWriteTx(func(tx *sqlx.Tx) error {
		var existingID string
		getErr := tx.Get(&existingID, `SELECT id FROM reactions WHERE message_id = ? AND sender = ? AND emoji = ?`,
			messageID, sender, emoji)
		if getErr == nil {
			_, delErr := tx.Exec(`DELETE FROM reactions WHERE id = ?`, existingID)
			added = false
			return translateErr(delErr)
		}

		reaction = chatcore.Reaction{
			ID:        newID(),
			MessageID: messageID,
			RoomID:    roomID,
			Sender:    sender,
			Emoji:     emoji,
			CreatedAt: nowRFC3339(),
		}
		_, insErr := tx.Exec(`INSERT INTO reactions (id, message_id, sender, emoji, created_at) VALUES (?, ?, ?, ?, ?)`,
			reaction.ID, reaction.MessageID, reaction.Sender, reaction.Emoji, reaction.CreatedAt)
		added = true
		return translateErr(insErr)
	})
	return reaction, added, err
}

// ListReactions returns every reaction on a message, oldest first.
func (s *Store) ListReactions(messageID string) ([]chatcore.Reaction, error) {
	var out []chatcore.Reaction
	err := s.db.Select(&out, `SELECT id, message_id, sender, emoji, created_at FROM reactions
		WHERE message_id = ? ORDER BY created_at ASC`, messageID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// ReactionsByMessage groups every reaction in a room by message_id, for the
// bulk /reactions endpoint.
func (s *Store) ReactionsByMessage(roomID string) (map[string][]chatcore.Reaction, error) {
	var rows []chatcore.Reaction
	err := s.db.Select(&rows, `SELECT r.id, r.message_id, r.sender, r.emoji, r.created_at
		FROM reactions r JOIN messages m ON m.id = r.message_id
		WHERE m.room_id = ? ORDER BY r.created_at ASC`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	out := make(map[string][]chatcore.Reaction)
	for _, r := range rows {
		out[r.MessageID] = append(out[r.MessageID], r)
	}
	return out, nil
}

package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// CreateWebhook registers an outgoing webhook subscription for a room.
func (s *Store) CreateWebhook(roomID, url, events string, secret *string, createdBy string) (chatcore.Webhook, error) {
	w := chatcore.Webhook{
		ID:        newID(),
		RoomID:    roomID,
		URL:       url,
		Events:    events,
		Secret:    secret,
		Active:    true,
		CreatedBy: createdBy,
		CreatedAt: nowRFC3339(),
	}
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO webhooks (id, room_id, url, events, secret, active, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?)`, w.ID, w.RoomID, w.URL, w.Events, w.Secret, w.CreatedBy, w.CreatedAt)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Webhook{}, err
	}
	return w, nil
}

// ListWebhooks returns every webhook registered on a room.
func (s *Store) ListWebhooks(roomID string) ([]chatcore.Webhook, error) {
	var out []chatcore.Webhook
	err := s.db.Select(&out, `SELECT id, room_id, url, events, secret, active, created_by, created_at
		FROM webhooks WHERE room_id = ? ORDER BY created_at DESC`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// ActiveWebhooksForRoom returns active webhooks for a room, used by the
// dispatcher to resolve delivery targets for a just-published event.
func (s *Store) ActiveWebhooksForRoom(roomID string) ([]chatcore.Webhook, error) {
	var out []chatcore.Webhook
	err := s.db.Select(&out, `SELECT id, room_id, url, events, secret, active, created_by, created_at
		FROM webhooks WHERE room_id = ? AND active = 1`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// DeleteWebhook removes an outgoing webhook.
func (s *Store) DeleteWebhook(roomID, webhookID string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`DELETE FROM webhooks WHERE id = ? AND room_id = ?`, webhookID, roomID)
		if err != nil {
			return translateErr(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return chatcore.NotFound("webhook not found")
		}
		return nil
	})
}

// CreateIncomingWebhook registers a token-gated incoming webhook.
func (s *Store) CreateIncomingWebhook(roomID, name, createdBy string) (chatcore.IncomingWebhook, error) {
	w := chatcore.IncomingWebhook{
		ID:        newID(),
		RoomID:    roomID,
		Name:      name,
		Token:     newToken(),
		Active:    true,
		CreatedBy: createdBy,
		CreatedAt: nowRFC3339(),
	}
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO incoming_webhooks (id, room_id, name, token, active, created_by, created_at)
			VALUES (?, ?, ?, ?, 1, ?, ?)`, w.ID, w.RoomID, w.Name, w.Token, w.CreatedBy, w.CreatedAt)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.IncomingWebhook{}, err
	}
	return w, nil
}

// ListIncomingWebhooks returns every incoming webhook registered on a room.
func (s *Store) ListIncomingWebhooks(roomID string) ([]chatcore.IncomingWebhook, error) {
	var out []chatcore.IncomingWebhook
	err := s.db.Select(&out, `SELECT id, room_id, name, token, active, created_by, created_at
		FROM incoming_webhooks WHERE room_id = ? ORDER BY created_at DESC`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// GetIncomingWebhookByToken resolves the public posting token to its room.
func (s *Store) GetIncomingWebhookByToken(token string) (chatcore.IncomingWebhook, error) {
	var w chatcore.IncomingWebhook
	err := s.db.Get(&w, `SELECT id, room_id, name, token, active, created_by, created_at
		FROM incoming_webhooks WHERE token = ? AND active = 1`, token)
	if err == sql.ErrNoRows {
		return chatcore.IncomingWebhook{}, chatcore.NotFound("incoming webhook not found")
	}
	if err != nil {
		return chatcore.IncomingWebhook{}, chatcore.Internal(err)
	}
	return w, nil
}

// DeleteIncomingWebhook removes an incoming webhook.
func (s *Store) DeleteIncomingWebhook(roomID, webhookID string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`DELETE FROM incoming_webhooks WHERE id = ? AND room_id = ?`, webhookID, roomID)
		if err != nil {
			return translateErr(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return chatcore.NotFound("incoming webhook not found")
		}
		return nil
	})
}

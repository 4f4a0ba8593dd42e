package store

import (
	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// AppendDeliveryLog writes one append-only delivery attempt row.
func (s *Store) AppendDeliveryLog(row chatcore.WebhookDeliveryLog) error {
	row.ID = newID()
	row.CreatedAt = nowRFC3339()
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO webhook_delivery_log
			(id, delivery_group, webhook_id, event, url, attempt, status, status_code, error_message, response_time_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.DeliveryGroup, row.WebhookID, row.Event, row.URL, row.Attempt, row.Status,
			row.StatusCode, row.ErrorMessage, row.ResponseTimeMs, row.CreatedAt)
		return translateErr(err)
	})
}

// ListDeliveryLog returns delivery attempts for a delivery_group, in
// attempt order.
func (s *Store) ListDeliveryLog(deliveryGroup string) ([]chatcore.WebhookDeliveryLog, error) {
	var out []chatcore.WebhookDeliveryLog
	err := s.db.Select(&out, `SELECT id, delivery_group, webhook_id, event, url, attempt, status,
		status_code, error_message, response_time_ms, created_at
		FROM webhook_delivery_log WHERE delivery_group = ? ORDER BY attempt ASC`, deliveryGroup)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

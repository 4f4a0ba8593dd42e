// Package webhook is the Webhook Dispatcher: an independent goroutine
// subscribed to the Event Bus that fans events out to registered per-room
// webhooks with HMAC signatures, fixed retries, and an append-only
// delivery log. Grounded line-for-line on original_source/src/webhooks.rs.
package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

const maxAttempts = 3

var retryBackoffs = []time.Duration{2 * time.Second, 4 * time.Second}

// Dispatcher owns the bus subscription and HTTP client used for delivery.
type Dispatcher struct {
	Store  *store.Store
	Bus    *eventbus.Bus
	Client *http.Client
}

// New constructs a Dispatcher with a 10s-timeout HTTP client, matching the
// reqwest client original_source/webhooks.rs builds.
func New(s *store.Store, bus *eventbus.Bus) *Dispatcher {
	return &Dispatcher{
		Store:  s,
		Bus:    bus,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Run subscribes to the bus and delivers webhooks for every event until the
// bus closes. Intended to be started as its own goroutine at boot.
func (d *Dispatcher) Run() {
	sub := d.Bus.Subscribe()
	defer sub.Close()

	for ev := range sub.Events {
		if _, ok := ev.(chatcore.Lag); ok {
			log.Printf("webhook: dispatcher lagged, resuming from next event")
			continue
		}
		name, roomID, data, ok := eventToPayload(ev)
		if !ok {
			continue
		}
		d.deliverAll(name, roomID, data)
	}
	log.Printf("webhook: dispatcher exiting, bus closed")
}

// eventToPayload maps a ChatEvent to (event_name, room_id, data). Events
// without a room — Typing, ReadPositionUpdated, Profile* — are not
// dispatched, matching spec.md §4.G's event_to_payload rule.
func eventToPayload(ev chatcore.ChatEvent) (name, roomID string, data interface{}, ok bool) {
	switch e := ev.(type) {
	case chatcore.NewMessage:
		return "message", e.Message.RoomID, e.Message, true
	case chatcore.MessageEdited:
		return "message_edited", e.Message.RoomID, e.Message, true
	case chatcore.MessageDeleted:
		return "message_deleted", e.RoomID_, map[string]string{"id": e.ID, "room_id": e.RoomID_}, true
	case chatcore.FileUploaded:
		return "file_uploaded", e.File.RoomID, e.File, true
	case chatcore.FileDeleted:
		return "file_deleted", e.RoomID_, map[string]string{"id": e.ID, "room_id": e.RoomID_}, true
	case chatcore.ReactionAdded:
		return "reaction_added", e.Reaction.RoomID, e.Reaction, true
	case chatcore.ReactionRemoved:
		return "reaction_removed", e.Reaction.RoomID, e.Reaction, true
	case chatcore.MessagePinned:
		return "message_pinned", e.Message.RoomID, e.Message, true
	case chatcore.MessageUnpinned:
		return "message_unpinned", e.RoomID_, map[string]string{"id": e.ID, "room_id": e.RoomID_}, true
	case chatcore.PresenceJoined:
		return "presence_joined", e.RoomID_, map[string]interface{}{"sender": e.Sender, "sender_type": e.SenderType, "room_id": e.RoomID_}, true
	case chatcore.PresenceLeft:
		return "presence_left", e.RoomID_, map[string]string{"sender": e.Sender, "room_id": e.RoomID_}, true
	case chatcore.RoomUpdated:
		return "room_updated", e.Room.ID, e.Room, true
	case chatcore.RoomArchived:
		return "room_archived", e.Room.ID, e.Room, true
	case chatcore.RoomUnarchived:
		return "room_unarchived", e.Room.ID, e.Room, true
	case chatcore.RoomBookmarked:
		return "room_bookmarked", e.RoomID_, map[string]string{"room_id": e.RoomID_, "sender": e.Sender}, true
	case chatcore.RoomUnbookmarked:
		return "room_unbookmarked", e.RoomID_, map[string]string{"room_id": e.RoomID_, "sender": e.Sender}, true
	default:
		// Typing, ReadPositionUpdated, ProfileUpdated, ProfileDeleted: no room, never dispatched.
		return "", "", nil, false
	}
}

func (d *Dispatcher) deliverAll(eventName, roomID string, data interface{}) {
	webhooks, err := d.Store.ActiveWebhooksForRoom(roomID)
	if err != nil || len(webhooks) == 0 {
		return
	}
	room, err := d.Store.GetRoom(roomID)
	roomName := "unknown"
	if err == nil {
		roomName = room.Name
	}

	for _, wh := range webhooks {
		if !eventAllowed(wh.Events, eventName) {
			continue
		}
		d.deliverOne(wh, eventName, roomID, roomName, data)
	}
}

func eventAllowed(filter, eventName string) bool {
	if filter == "*" {
		return true
	}
	for _, allowed := range strings.Split(filter, ",") {
		if strings.TrimSpace(allowed) == eventName {
			return true
		}
	}
	return false
}

func (d *Dispatcher) deliverOne(wh chatcore.Webhook, eventName, roomID, roomName string, data interface{}) {
	payload := chatcore.WebhookPayload{
		Event:     eventName,
		RoomID:    roomID,
		RoomName:  roomName,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	deliveryGroup := uuid.NewString()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(retryBackoffs[attempt-2])
		}

		statusCode, errMsg, elapsedMs := d.attempt(wh, eventName, body)
		status := "failed"
		if statusCode >= 200 && statusCode < 300 {
			status = "success"
		}

		var codePtr *int
		if statusCode > 0 {
			codePtr = &statusCode
		}
		var errPtr *string
		if errMsg != "" {
			errPtr = &errMsg
		}
		if logErr := d.Store.AppendDeliveryLog(chatcore.WebhookDeliveryLog{
			DeliveryGroup:  deliveryGroup,
			WebhookID:      wh.ID,
			Event:          eventName,
			URL:            wh.URL,
			Attempt:        attempt,
			Status:         status,
			StatusCode:     codePtr,
			ErrorMessage:   errPtr,
			ResponseTimeMs: elapsedMs,
		}); logErr != nil {
			log.Printf("webhook: failed to log delivery attempt: %v", logErr)
		}

		if status == "success" {
			return
		}
		if attempt == maxAttempts {
			log.Printf("webhook %s delivery to %s exhausted after %d attempts (last: %s)", wh.ID, wh.URL, maxAttempts, errMsg)
		}
	}
}

func (d *Dispatcher) attempt(wh chatcore.Webhook, eventName string, body []byte) (statusCode int, errMsg string, elapsedMs int64) {
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err.Error(), 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Chat-Event", eventName)
	req.Header.Set("X-Chat-Webhook-Id", wh.ID)
	if wh.Secret != nil {
		req.Header.Set("X-Chat-Signature", "sha256="+sign(*wh.Secret, body))
	}

	start := time.Now()
	resp, err := d.Client.Do(req)
	elapsedMs = time.Since(start).Milliseconds()
	if err != nil {
		return 0, err.Error(), elapsedMs
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Sprintf("HTTP %d", resp.StatusCode), elapsedMs
	}
	return resp.StatusCode, "", elapsedMs
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

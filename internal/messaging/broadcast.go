package messaging

import (
	"encoding/json"
	"strings"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// maxBroadcastRooms caps a single broadcast call. Broadcast enforces it; the
// handler layer does not check the length of room_ids.
const maxBroadcastRooms = 20

// BroadcastInput is the validated-before-use request to Broadcast.
type BroadcastInput struct {
	RoomIDs    []string
	Sender     string
	Content    string
	Metadata   json.RawMessage
	SenderType *string
}

// BroadcastDelivery reports the per-room outcome of one Broadcast call.
type BroadcastDelivery struct {
	RoomID    string  `json:"room_id"`
	Success   bool    `json:"success"`
	MessageID *string `json:"message_id,omitempty"`
	Error     *string `json:"error,omitempty"`
}

// Broadcast sends the same message to up to maxBroadcastRooms rooms as a
// first-class message in each: FTS-indexed, SSE-delivered, and present in
// history and the activity feed. A room that doesn't exist, or that fails
// to accept the insert, is reported per-room rather than aborting the
// whole call.
func (e *Engine) Broadcast(in BroadcastInput) ([]BroadcastDelivery, error) {
	sender, err := validateSender(in.Sender)
	if err != nil {
		return nil, err
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}
	if len(in.RoomIDs) == 0 {
		return nil, chatcore.Invalid("room_ids must not be empty")
	}
	if len(in.RoomIDs) > maxBroadcastRooms {
		return nil, chatcore.Invalid("broadcast is limited to %d rooms per call", maxBroadcastRooms)
	}

	results := make([]BroadcastDelivery, 0, len(in.RoomIDs))
	for _, roomID := range in.RoomIDs {
		results = append(results, e.broadcastOne(roomID, sender, content, in.Metadata, in.SenderType))
	}
	return results, nil
}

func (e *Engine) broadcastOne(roomID, sender, content string, metadata json.RawMessage, senderType *string) BroadcastDelivery {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		msg := "room_id must not be empty"
		return BroadcastDelivery{RoomID: roomID, Success: false, Error: &msg}
	}
	if _, err := e.Store.GetRoom(roomID); err != nil {
		msg := "room not found"
		return BroadcastDelivery{RoomID: roomID, Success: false, Error: &msg}
	}

	msg, err := e.SendMessage(SendInput{
		RoomID:     roomID,
		Sender:     sender,
		Content:    content,
		Metadata:   metadata,
		SenderType: senderType,
	})
	if err != nil {
		errMsg := "internal server error"
		return BroadcastDelivery{RoomID: roomID, Success: false, Error: &errMsg}
	}
	id := msg.ID
	return BroadcastDelivery{RoomID: roomID, Success: true, MessageID: &id}
}

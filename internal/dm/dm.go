// Package dm is the DM Resolver: deterministic two-party room naming,
// idempotent room creation, and conversation listing. Grounded on
// spec.md §4.H and original_source/src/routes (DM send/list handlers).
package dm

import (
	"strings"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

// Resolver wires the store and the message engine to implement send_dm
// and list_dm_conversations.
type Resolver struct {
	Store  *store.Store
	Engine *messaging.Engine
}

// New constructs a Resolver.
func New(s *store.Store, engine *messaging.Engine) *Resolver {
	return &Resolver{Store: s, Engine: engine}
}

// RoomName computes the deterministic, symmetric two-party DM room name:
// dm:<lower(min(a,b))>:<lower(max(a,b))>.
func RoomName(a, b string) string {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la <= lb {
		return "dm:" + la + ":" + lb
	}
	return "dm:" + lb + ":" + la
}

// SendInput is the validated-before-use request to Send.
type SendInput struct {
	Sender    string
	Recipient string
	Content   string
}

// Result is what send_dm returns: the persisted message, the DM room it
// landed in, and whether this call created that room.
type Result struct {
	Message chatcore.Message
	RoomID  string
	Created bool
}

// Send validates sender != recipient, resolves (or creates) the
// deterministic DM room, then sends through the Message Engine's
// standard insert path so the message gets the same FTS indexing, SSE
// delivery, and webhook dispatch as any room message.
func (r *Resolver) Send(in SendInput) (Result, error) {
	sender := strings.TrimSpace(in.Sender)
	recipient := strings.TrimSpace(in.Recipient)
	if sender == "" || len(sender) > 100 {
		return Result{}, chatcore.Invalid("sender must be between 1 and 100 characters")
	}
	if recipient == "" || len(recipient) > 100 {
		return Result{}, chatcore.Invalid("recipient must be between 1 and 100 characters")
	}
	if strings.EqualFold(sender, recipient) {
		return Result{}, chatcore.Invalid("sender and recipient must differ")
	}

	name := RoomName(sender, recipient)
	room, created, err := r.Store.GetOrCreateDMRoom(name, "DM between "+sender+" and "+recipient)
	if err != nil {
		return Result{}, err
	}

	msg, err := r.Engine.SendMessage(messaging.SendInput{
		RoomID:  room.ID,
		Sender:  sender,
		Content: in.Content,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Message: msg, RoomID: room.ID, Created: created}, nil
}

// ListConversations forwards to the store's enriched DM conversation list.
func (r *Resolver) ListConversations(sender string) ([]store.DMConversation, error) {
	return r.Store.ListDMConversations(sender)
}

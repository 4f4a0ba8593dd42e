// Package messaging is the Message Engine: it validates inputs, delegates
// persistence and FTS maintenance to internal/store, and publishes the
// resulting chatcore.ChatEvent to the Event Bus. Pinning, reactions, read
// positions, threads, mentions and search build on the same store calls.
package messaging

import (
	"encoding/json"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

// Engine wires the store to the event bus for every message-domain
// operation: send/edit/delete, listing, search, threads, mentions,
// pins, reactions, and read positions.
type Engine struct {
	Store *store.Store
	Bus   *eventbus.Bus
}

// New constructs an Engine.
func New(s *store.Store, bus *eventbus.Bus) *Engine {
	return &Engine{Store: s, Bus: bus}
}

// SendInput is the validated-before-use request to SendMessage.
type SendInput struct {
	RoomID     string
	Sender     string
	Content    string
	Metadata   json.RawMessage
	ReplyTo    *string
	SenderType *string
}

// SendMessage validates inputs, resolves the effective sender_type
// (top-level override, else metadata.sender_type, else nil), persists the
// message and publishes NewMessage.
func (e *Engine) SendMessage(in SendInput) (chatcore.Message, error) {
	sender, err := validateSender(in.Sender)
	if err != nil {
		return chatcore.Message{}, err
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return chatcore.Message{}, err
	}
	if _, err := e.Store.GetRoom(in.RoomID); err != nil {
		return chatcore.Message{}, err
	}
	if in.ReplyTo != nil {
		exists, err := e.Store.MessageExists(in.RoomID, *in.ReplyTo)
		if err != nil {
			return chatcore.Message{}, err
		}
		if !exists {
			return chatcore.Message{}, chatcore.Invalid("reply_to message does not exist in this room")
		}
	}

	senderType := resolveSenderType(in.SenderType, in.Metadata)

	msg, err := e.Store.InsertMessage(store.NewMessageInput{
		RoomID:     in.RoomID,
		Sender:     sender,
		SenderType: senderType,
		Content:    content,
		Metadata:   in.Metadata,
		ReplyTo:    in.ReplyTo,
	})
	if err != nil {
		return chatcore.Message{}, err
	}
	e.Bus.Publish(chatcore.NewMessage{Message: msg})
	return msg, nil
}

func resolveSenderType(override *string, metadata json.RawMessage) *string {
	if override != nil {
		return override
	}
	if len(metadata) == 0 {
		return nil
	}
	var fields struct {
		SenderType *string `json:"sender_type"`
	}
	if err := json.Unmarshal(metadata, &fields); err != nil {
		return nil
	}
	return fields.SenderType
}

// EditMessage re-validates content, appends a MessageEdit, and publishes
// MessageEdited. The sender field must match the stored sender.
func (e *Engine) EditMessage(roomID, messageID, sender, content string, metadata json.RawMessage) (chatcore.Message, error) {
	content, err := validateContent(content)
	if err != nil {
		return chatcore.Message{}, err
	}
	existing, err := e.Store.GetMessage(roomID, messageID)
	if err != nil {
		return chatcore.Message{}, err
	}
	if existing.Sender != sender {
		return chatcore.Message{}, chatcore.Forbidden("sender does not match message owner")
	}

	msg, err := e.Store.EditMessage(roomID, messageID, sender, content, metadata)
	if err != nil {
		return chatcore.Message{}, err
	}
	e.Bus.Publish(chatcore.MessageEdited{Message: msg})
	return msg, nil
}

// DeleteMessage removes the message and publishes MessageDeleted. It takes
// no actor; authorization (original sender or room admin) is done by the
// caller.
func (e *Engine) DeleteMessage(roomID, messageID string) error {
	if err := e.Store.DeleteMessage(roomID, messageID); err != nil {
		return err
	}
	e.Bus.Publish(chatcore.MessageDeleted{ID: messageID, RoomID_: roomID})
	return nil
}

// ListMessages forwards filter semantics to the store unchanged.
func (e *Engine) ListMessages(f store.ListFilter) ([]chatcore.Message, error) {
	return e.Store.ListMessages(f)
}

// ActivityFeed forwards to the store.
func (e *Engine) ActivityFeed(f store.ListFilter) ([]store.ActivityFeedRow, error) {
	return e.Store.ActivityFeed(f)
}

// Search forwards to the store's FTS-with-LIKE-fallback search.
func (e *Engine) Search(q string, f store.SearchFilter) ([]chatcore.Message, error) {
	return e.Store.Search(q, f)
}

// Thread forwards to the store's cycle-guarded ancestor walk + BFS.
func (e *Engine) Thread(roomID, messageID string) (chatcore.Message, []store.ThreadReply, error) {
	return e.Store.Thread(roomID, messageID)
}

// Mentions forwards to the store.
func (e *Engine) Mentions(target string, after *int64, room string, limit int) ([]chatcore.Message, error) {
	return e.Store.Mentions(target, after, room, limit)
}

// UnreadMentions forwards to the store.
func (e *Engine) UnreadMentions(target string) ([]store.UnreadMentionSummary, error) {
	return e.Store.UnreadMentions(target)
}

// PinMessage pins a message and publishes MessagePinned.
func (e *Engine) PinMessage(roomID, messageID, pinnedBy string) (chatcore.Message, error) {
	msg, err := e.Store.PinMessage(roomID, messageID, pinnedBy)
	if err != nil {
		return chatcore.Message{}, err
	}
	e.Bus.Publish(chatcore.MessagePinned{Message: msg})
	return msg, nil
}

// UnpinMessage unpins a message and publishes MessageUnpinned.
func (e *Engine) UnpinMessage(roomID, messageID string) (chatcore.Message, error) {
	msg, err := e.Store.UnpinMessage(roomID, messageID)
	if err != nil {
		return chatcore.Message{}, err
	}
	e.Bus.Publish(chatcore.MessageUnpinned{ID: messageID, RoomID_: roomID})
	return msg, nil
}

// ToggleReaction adds or removes a reaction and publishes the matching event.
func (e *Engine) ToggleReaction(roomID, messageID, sender, emoji string) (chatcore.Reaction, bool, error) {
	reaction, added, err := e.Store.ToggleReaction(roomID, messageID, sender, emoji)
	if err != nil {
		return chatcore.Reaction{}, false, err
	}
	if added {
		e.Bus.Publish(chatcore.ReactionAdded{Reaction: reaction})
	} else {
		e.Bus.Publish(chatcore.ReactionRemoved{Reaction: chatcore.Reaction{
			MessageID: messageID, RoomID: roomID, Sender: sender, Emoji: emoji,
		}})
	}
	return reaction, added, nil
}

// SetReadPosition updates a sender's read position and publishes
// ReadPositionUpdated.
func (e *Engine) SetReadPosition(roomID, sender string, seq int64) (chatcore.ReadPosition, error) {
	rp, err := e.Store.SetReadPosition(roomID, sender, seq)
	if err != nil {
		return chatcore.ReadPosition{}, err
	}
	e.Bus.Publish(chatcore.ReadPositionUpdated{ReadPosition: rp})
	return rp, nil
}

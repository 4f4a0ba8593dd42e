package chatcore

// ChatEvent is the tagged union published on the Event Bus. Every
// variant from spec.md §4.B is a distinct type implementing this
// interface; switch on the concrete type (a type switch, not a string
// tag) the way original_source/src/routes/stream.rs matches on its enum.
type ChatEvent interface {
	// SSEName is the event name used on the wire (spec.md §4.E's list).
	SSEName() string
	// RoomID returns the room the event belongs to, or "" for events
	// that are forwarded to every SSE stream regardless of room filter
	// (profile events).
	RoomID() string
}

type NewMessage struct{ Message Message }

func (NewMessage) SSEName() string    { return "message" }
func (e NewMessage) RoomID() string   { return e.Message.RoomID }

type MessageEdited struct{ Message Message }

func (MessageEdited) SSEName() string  { return "message_edited" }
func (e MessageEdited) RoomID() string { return e.Message.RoomID }

type MessageDeleted struct {
	ID     string
	RoomID_ string
}

func (MessageDeleted) SSEName() string  { return "message_deleted" }
func (e MessageDeleted) RoomID() string { return e.RoomID_ }

type RoomUpdated struct{ Room RoomWithStats }

func (RoomUpdated) SSEName() string  { return "room_updated" }
func (e RoomUpdated) RoomID() string { return e.Room.ID }

type RoomArchived struct{ Room RoomWithStats }

func (RoomArchived) SSEName() string  { return "room_archived" }
func (e RoomArchived) RoomID() string { return e.Room.ID }

type RoomUnarchived struct{ Room RoomWithStats }

func (RoomUnarchived) SSEName() string  { return "room_unarchived" }
func (e RoomUnarchived) RoomID() string { return e.Room.ID }

type Typing struct {
	Sender string
	RoomID_ string
}

func (Typing) SSEName() string  { return "typing" }
func (e Typing) RoomID() string { return e.RoomID_ }

type FileUploaded struct{ File FileInfo }

func (FileUploaded) SSEName() string  { return "file_uploaded" }
func (e FileUploaded) RoomID() string { return e.File.RoomID }

type FileDeleted struct {
	ID     string
	RoomID_ string
}

func (FileDeleted) SSEName() string  { return "file_deleted" }
func (e FileDeleted) RoomID() string { return e.RoomID_ }

type ReactionAdded struct{ Reaction Reaction }

func (ReactionAdded) SSEName() string  { return "reaction_added" }
func (e ReactionAdded) RoomID() string { return e.Reaction.RoomID }

type ReactionRemoved struct{ Reaction Reaction }

func (ReactionRemoved) SSEName() string  { return "reaction_removed" }
func (e ReactionRemoved) RoomID() string { return e.Reaction.RoomID }

type MessagePinned struct{ Message Message }

func (MessagePinned) SSEName() string  { return "message_pinned" }
func (e MessagePinned) RoomID() string { return e.Message.RoomID }

type MessageUnpinned struct {
	ID     string
	RoomID_ string
}

func (MessageUnpinned) SSEName() string  { return "message_unpinned" }
func (e MessageUnpinned) RoomID() string { return e.RoomID_ }

type PresenceJoined struct {
	Sender     string
	SenderType *string
	RoomID_    string
}

func (PresenceJoined) SSEName() string  { return "presence_joined" }
func (e PresenceJoined) RoomID() string { return e.RoomID_ }

type PresenceLeft struct {
	Sender  string
	RoomID_ string
}

func (PresenceLeft) SSEName() string  { return "presence_left" }
func (e PresenceLeft) RoomID() string { return e.RoomID_ }

type ReadPositionUpdated struct{ ReadPosition ReadPosition }

func (ReadPositionUpdated) SSEName() string  { return "read_position_updated" }
func (e ReadPositionUpdated) RoomID() string { return e.ReadPosition.RoomID }

type ProfileUpdated struct{ Profile Profile }

func (ProfileUpdated) SSEName() string  { return "profile_updated" }
func (ProfileUpdated) RoomID() string   { return "" }

type ProfileDeleted struct{ Sender string }

func (ProfileDeleted) SSEName() string { return "profile_deleted" }
func (ProfileDeleted) RoomID() string  { return "" }

type RoomBookmarked struct {
	RoomID_ string
	Sender  string
}

func (RoomBookmarked) SSEName() string  { return "room_bookmarked" }
func (e RoomBookmarked) RoomID() string { return e.RoomID_ }

type RoomUnbookmarked struct {
	RoomID_ string
	Sender  string
}

func (RoomUnbookmarked) SSEName() string  { return "room_unbookmarked" }
func (e RoomUnbookmarked) RoomID() string { return e.RoomID_ }

// Lag signals that a subscriber missed n events because it could not
// keep up with the publisher. It is never itself dispatched to webhooks.
type Lag struct{ N int }

func (Lag) SSEName() string { return "lag" }
func (Lag) RoomID() string  { return "" }

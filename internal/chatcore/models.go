package chatcore

import "encoding/json"

// Room is a chat room or a DM room (RoomType == "dm").
type Room struct {
	ID                string  `json:"id" db:"id"`
	Name              string  `json:"name" db:"name"`
	Description       string  `json:"description" db:"description"`
	CreatedBy         string  `json:"created_by" db:"created_by"`
	CreatedAt         string  `json:"created_at" db:"created_at"`
	UpdatedAt         string  `json:"updated_at" db:"updated_at"`
	AdminKey          string  `json:"admin_key,omitempty" db:"admin_key"`
	ArchivedAt        *string `json:"archived_at,omitempty" db:"archived_at"`
	RoomType          string  `json:"room_type" db:"room_type"`
	MaxMessages       *int64  `json:"max_messages,omitempty" db:"max_messages"`
	MaxMessageAgeHrs  *int64  `json:"max_message_age_hours,omitempty" db:"max_message_age_hours"`
}

// RoomWithStats decorates a Room with activity and per-viewer fields for list/detail responses.
type RoomWithStats struct {
	Room
	MessageCount       int64   `json:"message_count"`
	LastActivity       *string `json:"last_activity,omitempty"`
	LastMessageSender  *string `json:"last_message_sender,omitempty"`
	LastMessagePreview *string `json:"last_message_preview,omitempty"`
	Bookmarked         *bool   `json:"bookmarked,omitempty"`
}

// Message is a single chat message.
type Message struct {
	ID         string          `json:"id" db:"id"`
	RoomID     string          `json:"room_id" db:"room_id"`
	Sender     string          `json:"sender" db:"sender"`
	SenderType *string         `json:"sender_type,omitempty" db:"sender_type"`
	Content    string          `json:"content" db:"content"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt  string          `json:"created_at" db:"created_at"`
	EditedAt   *string         `json:"edited_at,omitempty" db:"edited_at"`
	ReplyTo    *string         `json:"reply_to,omitempty" db:"reply_to"`
	Seq        int64           `json:"seq" db:"seq"`
	PinnedAt   *string         `json:"pinned_at,omitempty" db:"pinned_at"`
	PinnedBy   *string         `json:"pinned_by,omitempty" db:"pinned_by"`
	EditCount  int64           `json:"edit_count,omitempty" db:"edit_count"`
}

// MessageEdit is one historical revision of a message.
type MessageEdit struct {
	ID              string `json:"id" db:"id"`
	MessageID       string `json:"message_id" db:"message_id"`
	PreviousContent string `json:"previous_content" db:"previous_content"`
	EditedAt        string `json:"edited_at" db:"edited_at"`
	Editor          string `json:"editor" db:"editor"`
}

// Reaction is one sender's emoji reaction on a message.
type Reaction struct {
	ID        string `json:"id" db:"id"`
	MessageID string `json:"message_id" db:"message_id"`
	RoomID    string `json:"room_id,omitempty" db:"room_id"`
	Sender    string `json:"sender" db:"sender"`
	Emoji     string `json:"emoji" db:"emoji"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// FileInfo is metadata about an uploaded file; the blob itself is fetched separately.
type FileInfo struct {
	ID          string `json:"id" db:"id"`
	RoomID      string `json:"room_id" db:"room_id"`
	Sender      string `json:"sender" db:"sender"`
	Filename    string `json:"filename" db:"filename"`
	ContentType string `json:"content_type" db:"content_type"`
	Size        int64  `json:"size" db:"size"`
	CreatedAt   string `json:"created_at" db:"created_at"`
}

// File is a FileInfo plus its decoded blob, used for download responses.
type File struct {
	FileInfo
	Data []byte `json:"-"`
}

// ReadPosition is the last seq a sender has read in a room.
type ReadPosition struct {
	RoomID      string `json:"room_id" db:"room_id"`
	Sender      string `json:"sender" db:"sender"`
	LastReadSeq int64  `json:"last_read_seq" db:"last_read_seq"`
	UpdatedAt   string `json:"updated_at" db:"updated_at"`
}

// Profile is a per-sender display profile, upserted with field-level merge semantics.
type Profile struct {
	Sender      string          `json:"sender" db:"sender"`
	DisplayName *string         `json:"display_name,omitempty" db:"display_name"`
	SenderType  *string         `json:"sender_type,omitempty" db:"sender_type"`
	AvatarURL   *string         `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio         *string         `json:"bio,omitempty" db:"bio"`
	StatusText  *string         `json:"status_text,omitempty" db:"status_text"`
	Metadata    json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   string          `json:"created_at" db:"created_at"`
	UpdatedAt   string          `json:"updated_at" db:"updated_at"`
}

// Bookmark records that sender bookmarked room_id.
type Bookmark struct {
	RoomID    string `json:"room_id" db:"room_id"`
	Sender    string `json:"sender" db:"sender"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// Webhook is an outgoing webhook subscription for a room.
type Webhook struct {
	ID        string `json:"id" db:"id"`
	RoomID    string `json:"room_id" db:"room_id"`
	URL       string `json:"url" db:"url"`
	Events    string `json:"events" db:"events"`
	Secret    *string `json:"secret,omitempty" db:"secret"`
	Active    bool   `json:"active" db:"active"`
	CreatedBy string `json:"created_by" db:"created_by"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// IncomingWebhook lets an external poster send a message via a public token URL.
type IncomingWebhook struct {
	ID        string `json:"id" db:"id"`
	RoomID    string `json:"room_id" db:"room_id"`
	Name      string `json:"name" db:"name"`
	Token     string `json:"token" db:"token"`
	Active    bool   `json:"active" db:"active"`
	CreatedBy string `json:"created_by" db:"created_by"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// WebhookDeliveryLog is one append-only row per delivery attempt.
type WebhookDeliveryLog struct {
	ID              string  `json:"id" db:"id"`
	DeliveryGroup   string  `json:"delivery_group" db:"delivery_group"`
	WebhookID       string  `json:"webhook_id" db:"webhook_id"`
	Event           string  `json:"event" db:"event"`
	URL             string  `json:"url" db:"url"`
	Attempt         int     `json:"attempt" db:"attempt"`
	Status          string  `json:"status" db:"status"`
	StatusCode      *int    `json:"status_code,omitempty" db:"status_code"`
	ErrorMessage    *string `json:"error_message,omitempty" db:"error_message"`
	ResponseTimeMs  int64   `json:"response_time_ms" db:"response_time_ms"`
	CreatedAt       string  `json:"created_at" db:"created_at"`
}

// WebhookPayload is the JSON body POSTed to a subscriber's URL.
type WebhookPayload struct {
	Event     string      `json:"event"`
	RoomID    string      `json:"room_id"`
	RoomName  string      `json:"room_name"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

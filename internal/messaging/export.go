package messaging

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

// ExportInput is the validated-before-use request to Export.
type ExportInput struct {
	RoomID           string
	Format           string // "json" (default), "markdown", "csv"
	After            string
	Before           string
	Sender           string
	Limit            int64
	IncludeMetadata  bool
}

// ExportedMessage is one message rendered for an export, metadata included
// only when the caller asked for it.
type ExportedMessage struct {
	Seq        int64           `json:"seq"`
	Sender     string          `json:"sender"`
	SenderType *string         `json:"sender_type,omitempty"`
	Content    string          `json:"content"`
	CreatedAt  string          `json:"created_at"`
	EditedAt   *string         `json:"edited_at,omitempty"`
	ReplyTo    *string         `json:"reply_to,omitempty"`
	PinnedAt   *string         `json:"pinned_at,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// ExportFilters echoes the filters that were applied, for the JSON envelope.
type ExportFilters struct {
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
	Sender string `json:"sender,omitempty"`
	Limit  int64  `json:"limit,omitempty"`
}

// JSONExport is the envelope returned for format=json.
type JSONExport struct {
	RoomID       string            `json:"room_id"`
	RoomName     string            `json:"room_name"`
	ExportedAt   string            `json:"exported_at"`
	MessageCount int               `json:"message_count"`
	Filters      ExportFilters     `json:"filters"`
	Messages     []ExportedMessage `json:"messages"`
}

var exportFormats = map[string]bool{"json": true, "markdown": true, "csv": true}

// Export renders a room's message history in one of three formats. The
// markdown and csv renderers return a ready-to-download body; json returns
// the JSONExport envelope already encoded with json.MarshalIndent.
func (e *Engine) Export(in ExportInput, nowRFC3339 string) (format string, body []byte, err error) {
	format = in.Format
	if format == "" {
		format = "json"
	}
	if !exportFormats[format] {
		return "", nil, chatcore.Invalid("invalid format. supported: json, markdown, csv")
	}

	room, err := e.Store.GetRoom(in.RoomID)
	if err != nil {
		return "", nil, err
	}

	rows, err := e.Store.ExportMessages(in.RoomID, store.ExportFilter{
		After:  in.After,
		Before: in.Before,
		Sender: in.Sender,
		Limit:  in.Limit,
	})
	if err != nil {
		return "", nil, err
	}

	exported := make([]ExportedMessage, len(rows))
	for i, m := range rows {
		exported[i] = toExportedMessage(m, in.IncludeMetadata)
	}

	switch format {
	case "markdown":
		return format, []byte(renderMarkdown(room.Name, room.ID, nowRFC3339, exported)), nil
	case "csv":
		b, rErr := renderCSV(exported, in.IncludeMetadata)
		if rErr != nil {
			return "", nil, chatcore.Internal(rErr)
		}
		return format, b, nil
	default:
		env := JSONExport{
			RoomID:       room.ID,
			RoomName:     room.Name,
			ExportedAt:   nowRFC3339,
			MessageCount: len(exported),
			Filters:      ExportFilters{After: in.After, Before: in.Before, Sender: in.Sender, Limit: in.Limit},
			Messages:     exported,
		}
		b, mErr := json.MarshalIndent(env, "", "  ")
		if mErr != nil {
			return "", nil, chatcore.Internal(mErr)
		}
		return format, b, nil
	}
}

func toExportedMessage(m chatcore.Message, includeMetadata bool) ExportedMessage {
	out := ExportedMessage{
		Seq:        m.Seq,
		Sender:     m.Sender,
		SenderType: m.SenderType,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		EditedAt:   m.EditedAt,
		ReplyTo:    m.ReplyTo,
		PinnedAt:   m.PinnedAt,
	}
	if includeMetadata {
		out.Metadata = m.Metadata
	}
	return out
}

func renderMarkdown(roomName, roomID, exportedAt string, messages []ExportedMessage) string {
	var md strings.Builder
	fmt.Fprintf(&md, "# #%s\n\n", roomName)
	fmt.Fprintf(&md, "> Exported %d messages on %s\n", len(messages), exportedAt)
	fmt.Fprintf(&md, "> Room ID: `%s`\n\n", roomID)
	md.WriteString("---\n\n")

	currentDate := ""
	for _, msg := range messages {
		date := msg.CreatedAt
		if len(date) >= 10 {
			date = date[:10]
		}
		if date != currentDate {
			if currentDate != "" {
				md.WriteString("\n")
			}
			fmt.Fprintf(&md, "## %s\n\n", date)
			currentDate = date
		}

		timeStr := msg.CreatedAt
		if len(msg.CreatedAt) >= 19 {
			timeStr = msg.CreatedAt[11:19]
		}

		senderBadge := ""
		if msg.SenderType != nil {
			switch *msg.SenderType {
			case "agent":
				senderBadge = " [agent]"
			case "human":
				senderBadge = " [human]"
			}
		}
		pinMarker := ""
		if msg.PinnedAt != nil {
			pinMarker = " [pinned]"
		}
		editMarker := ""
		if msg.EditedAt != nil {
			editMarker = " *(edited)*"
		}
		replyPrefix := ""
		if msg.ReplyTo != nil {
			replyPrefix = fmt.Sprintf("↩ *replying to %s*\n> ", *msg.ReplyTo)
		}

		fmt.Fprintf(&md, "**[%s] %s%s**%s%s\n%s%s\n\n",
			timeStr, msg.Sender, senderBadge, pinMarker, editMarker, replyPrefix, msg.Content)
	}
	return md.String()
}

func renderCSV(messages []ExportedMessage, includeMetadata bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"seq", "sender", "sender_type", "content", "created_at", "edited_at", "reply_to", "pinned_at"}
	if includeMetadata {
		header = append(header, "metadata")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, m := range messages {
		row := []string{
			fmt.Sprintf("%d", m.Seq),
			m.Sender,
			deref(m.SenderType),
			m.Content,
			m.CreatedAt,
			deref(m.EditedAt),
			deref(m.ReplyTo),
			deref(m.PinnedAt),
		}
		if includeMetadata {
			row = append(row, string(m.Metadata))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Package stream is the Stream Service: per-client SSE fan-out that
// replays history by cursor, forwards matching live events, emits
// heartbeats, and registers/deregisters presence.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/presence"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

const (
	replayLimit     = 100
	heartbeatPeriod = 15 * time.Second
)

// Service holds the dependencies every stream connection needs.
type Service struct {
	Store    *store.Store
	Bus      *eventbus.Bus
	Presence *presence.Tracker
}

// New constructs a Service.
func New(s *store.Store, bus *eventbus.Bus, pres *presence.Tracker) *Service {
	return &Service{Store: s, Bus: bus, Presence: pres}
}

// Request carries the query parameters a stream connection accepts.
type Request struct {
	RoomID     string
	Since      string // created_at cursor, back-compat
	After      *int64 // seq cursor, preferred
	Sender     string
	SenderType *string
}

// Handle services one SSE connection until the client disconnects or the
// bus closes. It takes over c.Writer directly (gin's c.Stream helper
// re-invokes its callback per event rather than holding one select loop)
// and writes raw "event: name\ndata: json\n\n" frames, flushing after each.
func (svc *Service) Handle(c *gin.Context, req Request) {
	if _, err := svc.Store.GetRoom(req.RoomID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	sub := svc.Bus.Subscribe()
	defer sub.Close()

	var joined bool
	if req.Sender != "" {
		isNew := svc.Presence.Join(req.RoomID, req.Sender, req.SenderType)
		joined = true
		if isNew {
			svc.Bus.Publish(chatcore.PresenceJoined{Sender: req.Sender, SenderType: req.SenderType, RoomID_: req.RoomID})
		}
	}
	defer func() {
		if !joined {
			return
		}
		if fullyLeft := svc.Presence.Leave(req.RoomID, req.Sender); fullyLeft {
			svc.Bus.Publish(chatcore.PresenceLeft{Sender: req.Sender, RoomID_: req.RoomID})
		}
	}()

	for _, msg := range svc.replay(req) {
		writeFrame(c.Writer, "message", msg)
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatPeriod)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return // bus closed: terminal signal
			}
			if _, isLag := ev.(chatcore.Lag); isLag {
				continue // best-effort live delivery; history stays resumable via after=<seq>
			}
			if ev.RoomID() != "" && ev.RoomID() != req.RoomID {
				continue
			}
			writeFrame(c.Writer, ev.SSEName(), payloadFor(ev))
			flusher.Flush()
		case t := <-heartbeat.C:
			writeFrame(c.Writer, "heartbeat", gin.H{"time": t.UTC().Format(time.RFC3339)})
			flusher.Flush()
		}
	}
}

func (svc *Service) replay(req Request) []chatcore.Message {
	switch {
	case req.After != nil:
		msgs, err := svc.Store.ListMessages(store.ListFilter{RoomID: req.RoomID, After: req.After, Limit: replayLimit})
		if err != nil {
			return nil
		}
		return msgs
	case req.Since != "":
		msgs, err := svc.Store.ListMessages(store.ListFilter{RoomID: req.RoomID, Since: req.Since, Limit: replayLimit})
		if err != nil {
			return nil
		}
		return msgs
	default:
		return nil
	}
}

func writeFrame(w http.ResponseWriter, event string, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
}

// payloadFor maps a ChatEvent to its wire body. Events that carry a full
// entity send that entity; the rest send just the fields a subscriber
// needs to act on them.
func payloadFor(ev chatcore.ChatEvent) interface{} {
	switch e := ev.(type) {
	case chatcore.NewMessage:
		return e.Message
	case chatcore.MessageEdited:
		return e.Message
	case chatcore.MessageDeleted:
		return gin.H{"id": e.ID, "room_id": e.RoomID_}
	case chatcore.RoomUpdated:
		return e.Room
	case chatcore.RoomArchived:
		return e.Room
	case chatcore.RoomUnarchived:
		return e.Room
	case chatcore.Typing:
		return gin.H{"sender": e.Sender, "room_id": e.RoomID_}
	case chatcore.FileUploaded:
		return e.File
	case chatcore.FileDeleted:
		return gin.H{"id": e.ID, "room_id": e.RoomID_}
	case chatcore.ReactionAdded:
		return e.Reaction
	case chatcore.ReactionRemoved:
		return e.Reaction
	case chatcore.MessagePinned:
		return e.Message
	case chatcore.MessageUnpinned:
		return gin.H{"id": e.ID, "room_id": e.RoomID_}
	case chatcore.PresenceJoined:
		return gin.H{"sender": e.Sender, "sender_type": e.SenderType, "room_id": e.RoomID_}
	case chatcore.PresenceLeft:
		return gin.H{"sender": e.Sender, "room_id": e.RoomID_}
	case chatcore.ReadPositionUpdated:
		return e.ReadPosition
	case chatcore.ProfileUpdated:
		return e.Profile
	case chatcore.ProfileDeleted:
		return gin.H{"sender": e.Sender}
	case chatcore.RoomBookmarked:
		return gin.H{"room_id": e.RoomID_, "sender": e.Sender}
	case chatcore.RoomUnbookmarked:
		return gin.H{"room_id": e.RoomID_, "sender": e.Sender}
	default:
		return gin.H{}
	}
}

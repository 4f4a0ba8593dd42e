package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/dm"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
	"github.com/Humans-Not-Required/agent-chat/internal/presence"
	"github.com/Humans-Not-Required/agent-chat/internal/ratelimit"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
	"github.com/Humans-Not-Required/agent-chat/internal/stream"
	"github.com/Humans-Not-Required/agent-chat/internal/typing"
)

// Handlers bundles every collaborator the HTTP surface calls into.
type Handlers struct {
	Store     *store.Store
	Engine    *messaging.Engine
	Bus       *eventbus.Bus
	Presence  *presence.Tracker
	Typing    *typing.Dedup
	Stream    *stream.Service
	DM        *dm.Resolver
	Limiter   *ratelimit.Limiter
}

// New wires a Handlers from its collaborators.
func New(s *store.Store, engine *messaging.Engine, bus *eventbus.Bus, pres *presence.Tracker,
	td *typing.Dedup, streamSvc *stream.Service, dmResolver *dm.Resolver, limiter *ratelimit.Limiter) *Handlers {
	return &Handlers{
		Store:    s,
		Engine:   engine,
		Bus:      bus,
		Presence: pres,
		Typing:   td,
		Stream:   streamSvc,
		DM:       dmResolver,
		Limiter:  limiter,
	}
}

// Routes mounts the full /api/v1 surface plus the bare /hook/:token
// incoming-webhook endpoint on r, the gin.Engine the caller already
// built (with whatever global middleware it wants applied first).
func (h *Handlers) Routes(r *gin.Engine) {
	r.GET("/api/v1/health", h.Health)
	r.GET("/api/v1/stats", h.Stats)

	rooms := r.Group("/api/v1/rooms")
	rooms.POST("", h.Limiter.Middleware("create_room", 10, time.Hour), h.CreateRoom)
	rooms.GET("", h.ListRooms)
	rooms.GET("/:id", h.GetRoom)
	rooms.PUT("/:id", h.UpdateRoom)
	rooms.POST("/:id/archive", h.ArchiveRoom)
	rooms.POST("/:id/unarchive", h.UnarchiveRoom)
	rooms.DELETE("/:id", h.DeleteRoom)

	rooms.POST("/:id/messages", h.Limiter.Middleware("send_message", 60, time.Minute), h.SendMessage)
	rooms.PUT("/:id/messages/:msg_id", h.EditMessage)
	rooms.DELETE("/:id/messages/:msg_id", h.DeleteMessage)
	rooms.GET("/:id/messages", h.ListMessages)
	rooms.GET("/:id/messages/:msg_id/edits", h.ListEdits)
	rooms.GET("/:id/messages/:msg_id/thread", h.Thread)

	r.GET("/api/v1/activity", h.ActivityFeed)
	r.GET("/api/v1/search", h.Search)

	rooms.GET("/:id/participants", h.Participants)

	rooms.POST("/:id/typing", h.PostTyping)

	rooms.GET("/:id/stream", h.StreamRoom)

	rooms.POST("/:id/files", h.Limiter.Middleware("upload_file", 10, time.Minute), h.UploadFile)
	rooms.GET("/:id/files", h.ListFiles)
	rooms.GET("/:id/files/:file_id", h.DownloadFile)
	rooms.GET("/:id/files/:file_id/info", h.FileInfo)
	rooms.DELETE("/:id/files/:file_id", h.DeleteFile)

	rooms.POST("/:id/messages/:msg_id/reactions", h.AddReaction)
	rooms.DELETE("/:id/messages/:msg_id/reactions", h.RemoveReaction)
	rooms.GET("/:id/messages/:msg_id/reactions", h.ListReactions)
	rooms.GET("/:id/reactions", h.BulkReactions)

	rooms.POST("/:id/messages/:msg_id/pin", h.PinMessage)
	rooms.DELETE("/:id/messages/:msg_id/pin", h.UnpinMessage)
	rooms.GET("/:id/pins", h.ListPins)

	rooms.GET("/:id/presence", h.RoomPresence)
	r.GET("/api/v1/presence", h.AllPresence)

	rooms.POST("/:id/webhooks", h.CreateWebhook)
	rooms.GET("/:id/webhooks", h.ListWebhooks)
	rooms.DELETE("/:id/webhooks/:wid", h.DeleteWebhook)
	rooms.POST("/:id/incoming-webhooks", h.CreateIncomingWebhook)
	rooms.GET("/:id/incoming-webhooks", h.ListIncomingWebhooks)
	rooms.DELETE("/:id/incoming-webhooks/:wid", h.DeleteIncomingWebhook)
	r.POST("/api/v1/hook/:token", h.Limiter.Middleware("incoming_webhook", 60, time.Minute), h.PostHook)

	rooms.PUT("/:id/read", h.SetReadPosition)
	r.GET("/api/v1/unread", h.Unread)

	r.GET("/api/v1/mentions", h.Mentions)
	r.GET("/api/v1/mentions/unread", h.UnreadMentions)

	profiles := r.Group("/api/v1/profiles")
	profiles.PUT("/:sender", h.UpsertProfile)
	profiles.GET("/:sender", h.GetProfile)
	profiles.GET("", h.ListProfiles)
	profiles.DELETE("/:sender", h.DeleteProfile)

	r.POST("/api/v1/dm", h.Limiter.Middleware("send_dm", 60, time.Minute), h.SendDM)
	r.GET("/api/v1/dm", h.ListDMConversations)
	r.GET("/api/v1/dm/:room_id", h.GetDMRoom)

	r.POST("/api/v1/broadcast", h.Limiter.Middleware("broadcast", 10, time.Minute), h.PostBroadcast)

	rooms.PUT("/:id/bookmark", h.AddBookmark)
	rooms.DELETE("/:id/bookmark", h.RemoveBookmark)
	r.GET("/api/v1/bookmarks", h.ListBookmarks)

	rooms.GET("/:id/export", h.ExportRoom)
}

package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/config"
	"github.com/Humans-Not-Required/agent-chat/internal/dm"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/httpapi"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
	"github.com/Humans-Not-Required/agent-chat/internal/middleware"
	"github.com/Humans-Not-Required/agent-chat/internal/presence"
	"github.com/Humans-Not-Required/agent-chat/internal/ratelimit"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
	"github.com/Humans-Not-Required/agent-chat/internal/stream"
	"github.com/Humans-Not-Required/agent-chat/internal/typing"
	"github.com/Humans-Not-Required/agent-chat/internal/webhook"
)

func main() {
	cfg := config.Load()

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("database dir: %v", err)
		}
	}

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer s.Close()

	bus := eventbus.New()
	defer bus.Close()

	pres := presence.New()
	typingDedup := typing.New()
	limiter := ratelimit.New()

	engine := messaging.New(s, bus)
	dmResolver := dm.New(s, engine)
	streamSvc := stream.New(s, bus, pres)

	dispatcher := webhook.New(s, bus)
	go dispatcher.Run()

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())
	r.Use(bodyLimit(cfg.MaxBodyBytes))

	handlers := httpapi.New(s, engine, bus, pres, typingDedup, streamSvc, dmResolver, limiter)
	handlers.Routes(r)

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
	}

	log.Printf("chat service listening on :%s (db=%s)", cfg.Port, cfg.DatabasePath)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// bodyLimit caps request bodies at cfg.MaxBodyBytes, raised above gin's
// default to accommodate base64-encoded file uploads.
func bodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/dm"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
	"github.com/Humans-Not-Required/agent-chat/internal/presence"
	"github.com/Humans-Not-Required/agent-chat/internal/ratelimit"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
	"github.com/Humans-Not-Required/agent-chat/internal/stream"
	"github.com/Humans-Not-Required/agent-chat/internal/typing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store, func()) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	bus := eventbus.New()
	engine := messaging.New(s, bus)

	h := New(s, engine, bus, presence.New(), typing.New(), stream.New(s, bus, presence.New()),
		dm.New(s, engine), ratelimit.New())

	r := gin.New()
	h.Routes(r)
	return r, s, func() { s.Close(); bus.Close() }
}

func createRoom(t *testing.T, s *store.Store, name string) chatcore.Room {
	t.Helper()
	room, err := s.CreateRoom(name, "", "tester")
	require.NoError(t, err)
	return room
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

package stream

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/presence"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

// syncWriter is a mutex-guarded http.ResponseWriter/http.Flusher so the test
// goroutine can safely read what Handle has written so far while Handle is
// still writing from its own goroutine.
type syncWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	hdr  http.Header
	code int
}

func newSyncWriter() *syncWriter { return &syncWriter{hdr: make(http.Header)} }

func (w *syncWriter) Header() http.Header { return w.hdr }

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.code = code
}

func (w *syncWriter) Flush() {}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// TestHandleDropsNoEventAcrossTheSubscribeReplayBoundary guards against the
// gap where Handle subscribed to the bus only after computing its replay
// batch: an event published in between was neither replayed nor delivered
// live. Handle now subscribes before joining presence or computing replay,
// so an event published the instant a subscriber is registered is still
// delivered.
func TestHandleDropsNoEventAcrossTheSubscribeReplayBoundary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	bus := eventbus.New()
	defer bus.Close()
	svc := New(s, bus, presence.New())

	room, err := s.CreateRoom("handle-room", "", "tester")
	require.NoError(t, err)

	w := newSyncWriter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/api/v1/rooms/"+room.ID+"/stream", nil).WithContext(ctx)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: room.ID}}

	done := make(chan struct{})
	go func() {
		svc.Handle(c, Request{RoomID: room.ID})
		close(done)
	}()

	// Wait for Handle to actually register its subscription before
	// publishing, simulating an event that lands in the gap the bug used
	// to drop: right as the subscriber comes online, before any replay
	// data could have been read.
	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Handle never subscribed to the event bus")
		}
		time.Sleep(time.Millisecond)
	}

	bus.Publish(chatcore.NewMessage{Message: chatcore.Message{ID: "m1", RoomID: room.ID, Content: "gap message"}})

	deadline = time.Now().Add(2 * time.Second)
	for !strings.Contains(w.String(), "gap message") {
		if time.Now().After(deadline) {
			t.Fatal("event published right after subscribing was never delivered to the stream")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Handle did not return after its request context was canceled")
	}
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health is a static status document; it never touches the store.
func (h *Handlers) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats reports room/message counts, last-hour active senders, and the
// sender-type breakdown.
func (h *Handlers) Stats(c *gin.Context) {
	st, err := h.Store.Stats()
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

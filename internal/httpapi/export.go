package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
)

var exportContentTypes = map[string]string{
	"json":     "application/json",
	"markdown": "text/markdown",
	"csv":      "text/csv",
}

// ExportRoom renders a room's message history as a downloadable
// json/markdown/csv attachment.
func (h *Handlers) ExportRoom(c *gin.Context) {
	roomID := c.Param("id")
	format, body, err := h.Engine.Export(messaging.ExportInput{
		RoomID:          roomID,
		Format:          c.DefaultQuery("format", "json"),
		After:           c.Query("after"),
		Before:          c.Query("before"),
		Sender:          c.Query("sender"),
		Limit:           int64(queryIntDefault(c, "limit", 0)),
		IncludeMetadata: queryBool(c, "include_metadata"),
	}, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		writeErr(c, err)
		return
	}

	ext := format
	if ext == "markdown" {
		ext = "md"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-export.%s"`, roomID, ext))
	c.Data(http.StatusOK, exportContentTypes[format], body)
}

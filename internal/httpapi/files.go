package httpapi

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

const maxFileBytes = 5 << 20 // 5 MiB decoded

type uploadFileRequest struct {
	Sender      string `json:"sender"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"` // base64
}

// UploadFile decodes a base64 payload (≤5 MiB decoded) and stores it.
func (h *Handlers) UploadFile(c *gin.Context) {
	roomID := c.Param("id")
	var req uploadFileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	if len(req.Filename) < 1 || len(req.Filename) > 255 {
		writeErr(c, chatcore.Invalid("filename must be between 1 and 255 characters"))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeErr(c, chatcore.Invalid("data must be valid base64"))
		return
	}
	if len(data) > maxFileBytes {
		writeErr(c, chatcore.Invalid("file exceeds the 5 MiB decoded size limit"))
		return
	}
	if _, err := h.Store.GetRoom(roomID); err != nil {
		writeErr(c, err)
		return
	}
	info, err := h.Store.InsertFile(roomID, req.Sender, req.Filename, req.ContentType, data)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.FileUploaded{File: info})
	writeJSON(c, http.StatusCreated, info)
}

// ListFiles returns file metadata for a room, newest first.
func (h *Handlers) ListFiles(c *gin.Context) {
	files, err := h.Store.ListFiles(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, files)
}

// DownloadFile streams a file's raw bytes with its stored content type.
func (h *Handlers) DownloadFile(c *gin.Context) {
	f, err := h.Store.GetFile(c.Param("id"), c.Param("file_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

// FileInfo returns a file's metadata without its blob.
func (h *Handlers) FileInfo(c *gin.Context) {
	info, err := h.Store.GetFileInfo(c.Param("id"), c.Param("file_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, info)
}

// DeleteFile removes a file.
func (h *Handlers) DeleteFile(c *gin.Context) {
	roomID, fileID := c.Param("id"), c.Param("file_id")
	if err := h.Store.DeleteFile(roomID, fileID); err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.FileDeleted{ID: fileID, RoomID_: roomID})
	c.Status(http.StatusNoContent)
}

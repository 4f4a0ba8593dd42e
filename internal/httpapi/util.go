// Package httpapi is the HTTP+SSE surface: gin handlers that parse
// requests, call into the Store/Engine/Resolver layers, and translate
// results and errors onto the wire per spec.md §6.
package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/pkg/response"
)

func writeErr(c *gin.Context, err error) {
	response.Err(c, err)
}

func writeJSON(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data)
}

func queryInt64Ptr(c *gin.Context, key string) *int64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func queryIntDefault(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryStringPtr(c *gin.Context, key string) *string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	return &raw
}

func queryBool(c *gin.Context, key string) bool {
	raw := c.Query(key)
	b, _ := strconv.ParseBool(raw)
	return b
}

// bindJSON binds the request body into dst, writing an Invalid error and
// returning ok=false on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeErr(c, chatcore.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}

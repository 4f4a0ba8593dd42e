package messaging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJSONDefaultFormat(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "export-a")

	_, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "first"})
	require.NoError(t, err)
	_, err = e.SendMessage(SendInput{RoomID: room.ID, Sender: "forge", Content: "second"})
	require.NoError(t, err)

	format, body, err := e.Export(ExportInput{RoomID: room.ID}, "2026-07-31T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "json", format)

	var env JSONExport
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, 2, env.MessageCount)
	assert.Equal(t, "export-a", env.RoomName)
}

func TestExportMarkdownIncludesSenders(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "export-b")

	_, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "hello there"})
	require.NoError(t, err)

	format, body, err := e.Export(ExportInput{RoomID: room.ID, Format: "markdown"}, "2026-07-31T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "markdown", format)
	assert.Contains(t, string(body), "nanook")
	assert.Contains(t, string(body), "hello there")
}

func TestExportCSVHeaderOmitsMetadataByDefault(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "export-c")

	_, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "csv row"})
	require.NoError(t, err)

	format, body, err := e.Export(ExportInput{RoomID: room.ID, Format: "csv"}, "2026-07-31T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "csv", format)
	assert.Contains(t, string(body), "seq,sender,sender_type,content,created_at,edited_at,reply_to,pinned_at\n")
}

func TestExportRejectsInvalidFormat(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "export-d")

	_, _, err := e.Export(ExportInput{RoomID: room.ID, Format: "xml"}, "2026-07-31T00:00:00Z")
	require.Error(t, err)
}

package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// InsertFile stores a decoded file blob alongside its metadata.
func (s *Store) InsertFile(roomID, sender, filename, contentType string, data []byte) (chatcore.FileInfo, error) {
	info := chatcore.FileInfo{
		ID:          newID(),
		RoomID:      roomID,
		Sender:      sender,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   nowRFC3339(),
	}
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO files (id, room_id, sender, filename, content_type, size, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			info.ID, info.RoomID, info.Sender, info.Filename, info.ContentType, info.Size, data, info.CreatedAt)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.FileInfo{}, err
	}
	return info, nil
}

// GetFile fetches a file's metadata and blob.
func (s *Store) GetFile(roomID, fileID string) (chatcore.File, error) {
	var f chatcore.File
	err := s.db.Get(&f, `SELECT id, room_id, sender, filename, content_type, size, created_at, data
		FROM files WHERE id = ? AND room_id = ?`, fileID, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return chatcore.File{}, chatcore.NotFound("file not found")
		}
		return chatcore.File{}, chatcore.Internal(err)
	}
	return f, nil
}

// GetFileInfo fetches only a file's metadata, without the blob.
func (s *Store) GetFileInfo(roomID, fileID string) (chatcore.FileInfo, error) {
	var f chatcore.FileInfo
	err := s.db.Get(&f, `SELECT id, room_id, sender, filename, content_type, size, created_at
		FROM files WHERE id = ? AND room_id = ?`, fileID, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return chatcore.FileInfo{}, chatcore.NotFound("file not found")
		}
		return chatcore.FileInfo{}, chatcore.Internal(err)
	}
	return f, nil
}

// ListFiles returns file metadata for a room, newest first.
func (s *Store) ListFiles(roomID string) ([]chatcore.FileInfo, error) {
	var out []chatcore.FileInfo
	err := s.db.Select(&out, `SELECT id, room_id, sender, filename, content_type, size, created_at
		FROM files WHERE room_id = ? ORDER BY created_at DESC`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// DeleteFile removes a file row.
func (s *Store) DeleteFile(roomID, fileID string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`DELETE FROM files WHERE id = ? AND room_id = ?`, fileID, roomID)
		if err != nil {
			return translateErr(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return chatcore.NotFound("file not found")
		}
		return nil
	})
}

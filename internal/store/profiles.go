package store

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// ProfilePatch carries the fields an upsert may set; absent (nil) fields
// preserve the prior stored value.
type ProfilePatch struct {
	DisplayName *string
	SenderType  *string
	AvatarURL   *string
	Bio         *string
	StatusText  *string
	Metadata    json.RawMessage
}

// UpsertProfile merges patch into the sender's stored profile, creating it
// if absent.
func (s *Store) UpsertProfile(sender string, patch ProfilePatch) (chatcore.Profile, error) {
	err := s.withWriteTx(func(tx *sqlx.Tx) error {
		var existing chatcore.Profile
		getErr := tx.Get(&existing, `SELECT sender, display_name, sender_type, avatar_url, bio, status_text,
			metadata, created_at, updated_at FROM profiles WHERE sender = ?`, sender)

		now := nowRFC3339()
		if getErr == sql.ErrNoRows {
			p := chatcore.Profile{
				Sender:      sender,
				DisplayName: patch.DisplayName,
				SenderType:  patch.SenderType,
				AvatarURL:   patch.AvatarURL,
				Bio:         patch.Bio,
				StatusText:  patch.StatusText,
				Metadata:    patch.Metadata,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if p.Metadata == nil {
				p.Metadata = json.RawMessage(`{}`)
			}
			_, err := tx.Exec(`INSERT INTO profiles (sender, display_name, sender_type, avatar_url, bio, status_text,
				metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.Sender, p.DisplayName, p.SenderType, p.AvatarURL, p.Bio, p.StatusText, string(p.Metadata), p.CreatedAt, p.UpdatedAt)
			return translateErr(err)
		}
		if getErr != nil {
			return chatcore.Internal(getErr)
		}

		merged := mergeProfile(existing, patch)
		_, err := tx.Exec(`UPDATE profiles SET display_name = ?, sender_type = ?, avatar_url = ?, bio = ?,
			status_text = ?, metadata = ?, updated_at = ? WHERE sender = ?`,
			merged.DisplayName, merged.SenderType, merged.AvatarURL, merged.Bio, merged.StatusText,
			string(merged.Metadata), now, sender)
		return translateErr(err)
	})
	if err != nil {
		return chatcore.Profile{}, err
	}
	return s.GetProfile(sender)
}

func mergeProfile(existing chatcore.Profile, patch ProfilePatch) chatcore.Profile {
	out := existing
	if patch.DisplayName != nil {
		out.DisplayName = patch.DisplayName
	}
	if patch.SenderType != nil {
		out.SenderType = patch.SenderType
	}
	if patch.AvatarURL != nil {
		out.AvatarURL = patch.AvatarURL
	}
	if patch.Bio != nil {
		out.Bio = patch.Bio
	}
	if patch.StatusText != nil {
		out.StatusText = patch.StatusText
	}
	if patch.Metadata != nil {
		out.Metadata = patch.Metadata
	}
	return out
}

// GetProfile fetches a sender's profile.
func (s *Store) GetProfile(sender string) (chatcore.Profile, error) {
	var p chatcore.Profile
	err := s.db.Get(&p, `SELECT sender, display_name, sender_type, avatar_url, bio, status_text,
		metadata, created_at, updated_at FROM profiles WHERE sender = ?`, sender)
	if err == sql.ErrNoRows {
		return chatcore.Profile{}, chatcore.NotFound("profile not found")
	}
	if err != nil {
		return chatcore.Profile{}, chatcore.Internal(err)
	}
	return p, nil
}

// ListProfiles returns profiles, optionally filtered by sender_type.
func (s *Store) ListProfiles(senderType string) ([]chatcore.Profile, error) {
	query := `SELECT sender, display_name, sender_type, avatar_url, bio, status_text,
		metadata, created_at, updated_at FROM profiles`
	var args []interface{}
	if senderType != "" {
		query += ` WHERE sender_type = ?`
		args = append(args, senderType)
	}
	query += ` ORDER BY sender ASC`

	var out []chatcore.Profile
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// DeleteProfile removes a sender's profile.
func (s *Store) DeleteProfile(sender string) error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`DELETE FROM profiles WHERE sender = ?`, sender)
		if err != nil {
			return translateErr(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return chatcore.NotFound("profile not found")
		}
		return nil
	})
}

package store

import (
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func ftsUpsertTx(tx *sqlx.Tx, messageID, content, sender string) error {
	if _, err := tx.Exec(`DELETE FROM messages_fts WHERE message_id = ?`, messageID); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO messages_fts (message_id, content, sender) VALUES (?, ?, ?)`,
		messageID, content, sender)
	return err
}

// FTSRebuild truncates and repopulates the full-text index from messages.
// Used defensively to repair drift; never exposed over HTTP.
func (s *Store) FTSRebuild() error {
	return s.withWriteTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM messages_fts`); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO messages_fts (message_id, content, sender) SELECT id, content, sender FROM messages`)
		return err
	})
}

var ftsTermPattern = regexp.MustCompile(`[^a-zA-Z0-9_\-']+`)

// buildFTSQuery tokenizes q by whitespace, strips characters other than
// alphanumerics/_/-/', drops empty terms, quotes each, and joins with a
// space (implicit AND across terms) for an FTS5 MATCH expression. Returns
// "" if no terms survive.
func buildFTSQuery(q string) string {
	fields := strings.Fields(q)
	var terms []string
	for _, f := range fields {
		cleaned := ftsTermPattern.ReplaceAllString(f, "")
		if cleaned == "" {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(cleaned, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

// escapeLike escapes %, _ and \ for a LIKE ... ESCAPE '\' clause.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// SearchFilter narrows Search.
type SearchFilter struct {
	Room       string
	Sender     string
	SenderType string
	Limit      int
}

// Search runs an FTS MATCH query ranked by rank; on FTS parse failure it
// falls back to an escaped LIKE substring search ordered by seq DESC.
func (s *Store) Search(q string, f SearchFilter) ([]chatcore.Message, error) {
	ftsQuery := buildFTSQuery(q)
	if ftsQuery != "" {
		msgs, err := s.searchFTS(ftsQuery, f)
		if err == nil {
			return msgs, nil
		}
		// fall through to LIKE on any FTS error (e.g. unparseable query)
	}
	return s.searchLike(q, f)
}

func (s *Store) searchFTS(ftsQuery string, f SearchFilter) ([]chatcore.Message, error) {
	query := `SELECT m.id, m.room_id, m.sender, m.sender_type, m.content, m.metadata, m.created_at,
		m.edited_at, m.reply_to, m.seq, m.pinned_at, m.pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = m.id) as edit_count
		FROM messages_fts fts
		JOIN messages m ON m.id = fts.message_id
		WHERE messages_fts MATCH ?`
	args := []interface{}{ftsQuery}
	query, args = appendSearchFilters(query, args, f, "m")
	query += ` ORDER BY rank LIMIT ?`
	args = append(args, limitOrDefault(f.Limit, 200))

	var out []chatcore.Message
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) searchLike(q string, f SearchFilter) ([]chatcore.Message, error) {
	pattern := "%" + escapeLike(q) + "%"
	query := `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE content LIKE ? ESCAPE '\'`
	args := []interface{}{pattern}
	query, args = appendSearchFilters(query, args, f, "messages")
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limitOrDefault(f.Limit, 200))

	var out []chatcore.Message
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

func appendSearchFilters(query string, args []interface{}, f SearchFilter, alias string) (string, []interface{}) {
	if f.Room != "" {
		query += ` AND ` + alias + `.room_id = ?`
		args = append(args, f.Room)
	}
	if f.Sender != "" {
		query += ` AND ` + alias + `.sender = ?`
		args = append(args, f.Sender)
	}
	if f.SenderType != "" {
		query += ` AND ` + alias + `.sender_type = ?`
		args = append(args, f.SenderType)
	}
	return query, args
}

func limitOrDefault(n, max int) int {
	if n <= 0 {
		return max
	}
	if n > max {
		return max
	}
	return n
}

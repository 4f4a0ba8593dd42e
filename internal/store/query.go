package store

import (
	"strings"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// ListFilter narrows ListMessages and ActivityFeed.
type ListFilter struct {
	RoomID        string // empty for ActivityFeed (cross-room)
	Sender        string
	SenderType    string
	ExcludeSender []string
	Since         string // created_at >
	Before        string // created_at <
	After         *int64 // seq >
	BeforeSeq     *int64 // seq <
	Limit         int
	Latest        *int64 // shorthand: before_seq=maxSeq (1<<62), limit=Latest, ignored if BeforeSeq/After set
}

const maxSeq = int64(1) << 62

func (f ListFilter) effectiveBeforeSeq() *int64 {
	if f.Latest != nil && f.BeforeSeq == nil && f.After == nil {
		v := maxSeq
		return &v
	}
	return f.BeforeSeq
}

func (f ListFilter) effectiveLimit() int {
	if f.Latest != nil && f.BeforeSeq == nil && f.After == nil {
		return int(*f.Latest)
	}
	if f.Limit <= 0 {
		return 50
	}
	if f.Limit > 500 {
		return 500
	}
	return f.Limit
}

// ListMessages returns messages matching filter. Ordered ASC by seq, except
// when BeforeSeq is used without After: the query runs DESC and is reversed
// so the most recent N before the cursor come back chronologically.
func (s *Store) ListMessages(f ListFilter) ([]chatcore.Message, error) {
	beforeSeq := f.effectiveBeforeSeq()
	reverseOrder := beforeSeq != nil && f.After == nil

	query := `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE room_id = ?`
	args := []interface{}{f.RoomID}
	query, args = appendListFilters(query, args, f, beforeSeq)

	if reverseOrder {
		query += ` ORDER BY seq DESC LIMIT ?`
	} else {
		query += ` ORDER BY seq ASC LIMIT ?`
	}
	args = append(args, f.effectiveLimit())

	var out []chatcore.Message
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, chatcore.Internal(err)
	}
	if reverseOrder {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// ActivityFeedRow decorates a Message with the fields the cross-room feed
// additionally carries.
type ActivityFeedRow struct {
	chatcore.Message
	RoomName string `db:"room_name"`
}

// ActivityFeed is a newest-first cross-room feed with the same filters as
// ListMessages minus room_id.
func (s *Store) ActivityFeed(f ListFilter) ([]ActivityFeedRow, error) {
	query := `SELECT m.id, m.room_id, m.sender, m.sender_type, m.content, m.metadata, m.created_at,
		m.edited_at, m.reply_to, m.seq, m.pinned_at, m.pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = m.id) as edit_count,
		r.name as room_name
		FROM messages m JOIN rooms r ON r.id = m.room_id WHERE 1=1`
	args := []interface{}{}
	f.RoomID = ""
	query, args = appendListFiltersAliased(query, args, f, f.effectiveBeforeSeq(), "m")
	query += ` ORDER BY m.seq DESC LIMIT ?`
	args = append(args, f.effectiveLimit())

	var out []ActivityFeedRow
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

func appendListFilters(query string, args []interface{}, f ListFilter, beforeSeq *int64) (string, []interface{}) {
	return appendListFiltersAliased(query, args, f, beforeSeq, "messages")
}

func appendListFiltersAliased(query string, args []interface{}, f ListFilter, beforeSeq *int64, alias string) (string, []interface{}) {
	if f.Sender != "" {
		query += ` AND ` + alias + `.sender = ?`
		args = append(args, f.Sender)
	}
	if f.SenderType != "" {
		query += ` AND ` + alias + `.sender_type = ?`
		args = append(args, f.SenderType)
	}
	if len(f.ExcludeSender) > 0 {
		placeholders := make([]string, len(f.ExcludeSender))
		for i, sender := range f.ExcludeSender {
			placeholders[i] = "?"
			args = append(args, sender)
		}
		query += ` AND ` + alias + `.sender NOT IN (` + strings.Join(placeholders, ",") + `)`
	}
	if f.Since != "" {
		query += ` AND ` + alias + `.created_at > ?`
		args = append(args, f.Since)
	}
	if f.Before != "" {
		query += ` AND ` + alias + `.created_at < ?`
		args = append(args, f.Before)
	}
	if f.After != nil {
		query += ` AND ` + alias + `.seq > ?`
		args = append(args, *f.After)
	}
	if beforeSeq != nil {
		query += ` AND ` + alias + `.seq < ?`
		args = append(args, *beforeSeq)
	}
	return query, args
}

// ThreadReply pairs a message with its depth in the thread.
type ThreadReply struct {
	Message chatcore.Message
	Depth   int
}

// Thread walks reply_to ancestors from messageID (cycle-guarded) to find
// the root, then BFS-collects descendants in the same room, sorted by seq
// ascending and annotated with depth (root's direct children = 1).
func (s *Store) Thread(roomID, messageID string) (root chatcore.Message, replies []ThreadReply, err error) {
	cur, err := s.GetMessage(roomID, messageID)
	if err != nil {
		return chatcore.Message{}, nil, err
	}
	visited := map[string]bool{cur.ID: true}
	for cur.ReplyTo != nil {
		parent, gErr := s.GetMessage(roomID, *cur.ReplyTo)
		if gErr != nil {
			break // parent missing: cur is the root
		}
		if visited[parent.ID] {
			break // cycle: treat the earliest visited node as root
		}
		visited[parent.ID] = true
		cur = parent
	}
	root = cur

	var all []chatcore.Message
	if selErr := s.db.Select(&all, `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE room_id = ? ORDER BY seq ASC`, roomID); selErr != nil {
		return chatcore.Message{}, nil, chatcore.Internal(selErr)
	}

	childrenOf := make(map[string][]chatcore.Message)
	for _, m := range all {
		if m.ReplyTo != nil {
			childrenOf[*m.ReplyTo] = append(childrenOf[*m.ReplyTo], m)
		}
	}

	type queued struct {
		msg   chatcore.Message
		depth int
	}
	seen := map[string]bool{root.ID: true}
	queue := []queued{}
	for _, child := range childrenOf[root.ID] {
		if seen[child.ID] {
			continue
		}
		seen[child.ID] = true
		queue = append(queue, queued{child, 1})
	}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		replies = append(replies, ThreadReply{Message: q.msg, Depth: q.depth})
		for _, child := range childrenOf[q.msg.ID] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			queue = append(queue, queued{child, q.depth + 1})
		}
	}
	return root, replies, nil
}

// Mentions returns messages whose content matches %@target%, excluding the
// target's own messages, paginated by seq.
func (s *Store) Mentions(target string, after *int64, room string, limit int) ([]chatcore.Message, error) {
	pattern := "%@" + escapeLike(target) + "%"
	query := `SELECT id, room_id, sender, sender_type, content, metadata, created_at,
		edited_at, reply_to, seq, pinned_at, pinned_by,
		(SELECT COUNT(*) FROM message_edits WHERE message_id = messages.id) as edit_count
		FROM messages WHERE content LIKE ? ESCAPE '\' AND sender != ?`
	args := []interface{}{pattern, target}
	if after != nil {
		query += ` AND seq > ?`
		args = append(args, *after)
	}
	if room != "" {
		query += ` AND room_id = ?`
		args = append(args, room)
	}
	query += ` ORDER BY seq ASC LIMIT ?`
	args = append(args, limitOrDefault(limit, 200))

	var out []chatcore.Message
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// UnreadMentionSummary is one room's mention backlog for a target sender.
type UnreadMentionSummary struct {
	RoomID       string `db:"room_id"`
	RoomName     string `db:"room_name"`
	OldestSeq    int64  `db:"oldest_seq"`
	NewestSeq    int64  `db:"newest_seq"`
	MentionCount int64  `db:"mention_count"`
}

// UnreadMentions reports, per room, the oldest/newest seq and count of
// unread mentions of target (seq > the target's last_read_seq there).
func (s *Store) UnreadMentions(target string) ([]UnreadMentionSummary, error) {
	pattern := "%@" + escapeLike(target) + "%"
	var out []UnreadMentionSummary
	err := s.db.Select(&out, `
		SELECT m.room_id as room_id, r.name as room_name,
		       MIN(m.seq) as oldest_seq, MAX(m.seq) as newest_seq, COUNT(*) as mention_count
		FROM messages m
		JOIN rooms r ON r.id = m.room_id
		LEFT JOIN read_positions rp ON rp.room_id = m.room_id AND rp.sender = ?
		WHERE m.content LIKE ? ESCAPE '\' AND m.sender != ?
		  AND m.seq > COALESCE(rp.last_read_seq, 0)
		GROUP BY m.room_id, r.name
		ORDER BY newest_seq DESC`, target, pattern, target)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// Participants aggregates distinct senders in a room from messages.
type Participant struct {
	Sender      string  `db:"sender"`
	SenderType  *string `db:"sender_type"`
	MessageCount int64  `db:"message_count"`
	LastSeenAt  string  `db:"last_seen_at"`
}

// Participants returns aggregated senders for a room, read from its messages
// alone. Profile fields are not joined in: each entry carries only sender,
// sender_type, message_count and last_seen_at.
func (s *Store) Participants(roomID string) ([]Participant, error) {
	var out []Participant
	err := s.db.Select(&out, `
		SELECT sender, MAX(sender_type) as sender_type, COUNT(*) as message_count, MAX(created_at) as last_seen_at
		FROM messages WHERE room_id = ? GROUP BY sender ORDER BY last_seen_at DESC`, roomID)
	if err != nil {
		return nil, chatcore.Internal(err)
	}
	return out, nil
}

// Stats is the /stats summary.
type Stats struct {
	RoomCount          int64            `json:"room_count"`
	MessageCount       int64            `json:"message_count"`
	ActiveSendersHour  int64            `json:"active_senders_last_hour"`
	SenderTypeBreakdown map[string]int64 `json:"sender_type_breakdown"`
}

// Stats computes room/message counts, senders active in the last hour, and
// a sender_type breakdown.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Get(&st.RoomCount, `SELECT COUNT(*) FROM rooms WHERE room_type = 'room'`); err != nil {
		return Stats{}, chatcore.Internal(err)
	}
	if err := s.db.Get(&st.MessageCount, `SELECT COUNT(*) FROM messages`); err != nil {
		return Stats{}, chatcore.Internal(err)
	}
	if err := s.db.Get(&st.ActiveSendersHour,
		`SELECT COUNT(DISTINCT sender) FROM messages WHERE created_at > datetime('now', '-1 hours')`); err != nil {
		return Stats{}, chatcore.Internal(err)
	}
	rows, err := s.db.Query(`SELECT COALESCE(sender_type, 'unknown'), COUNT(*) FROM messages GROUP BY sender_type`)
	if err != nil {
		return Stats{}, chatcore.Internal(err)
	}
	defer rows.Close()
	st.SenderTypeBreakdown = make(map[string]int64)
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return Stats{}, chatcore.Internal(err)
		}
		st.SenderTypeBreakdown[t] = n
	}
	return st, nil
}

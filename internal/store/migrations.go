package store

// migrations holds the ordered list of DDL statements that bring the schema
// up to date. Index i corresponds to version i+1; the "vN" labels below name
// groups of statements, and a group with several statements spans several
// versions. Append only — never edit or reorder existing entries.
var migrations = []string{
	// v1 — rooms
	`CREATE TABLE IF NOT EXISTS rooms (
		id                      TEXT PRIMARY KEY,
		name                    TEXT NOT NULL UNIQUE,
		description             TEXT NOT NULL DEFAULT '',
		created_by              TEXT NOT NULL DEFAULT 'anonymous',
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL,
		admin_key               TEXT NOT NULL,
		archived_at             TEXT,
		room_type               TEXT NOT NULL DEFAULT 'room',
		max_messages            INTEGER,
		max_message_age_hours   INTEGER
	)`,
	// v2 — messages
	`CREATE TABLE IF NOT EXISTS messages (
		id          TEXT PRIMARY KEY,
		room_id     TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		sender      TEXT NOT NULL,
		sender_type TEXT,
		content     TEXT NOT NULL,
		metadata    TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL,
		edited_at   TEXT,
		reply_to    TEXT REFERENCES messages(id) ON DELETE SET NULL,
		seq         INTEGER NOT NULL UNIQUE,
		pinned_at   TEXT,
		pinned_by   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_room_seq ON messages(room_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_seq ON messages(seq)`,
	// v3 — message edits
	`CREATE TABLE IF NOT EXISTS message_edits (
		id               TEXT PRIMARY KEY,
		message_id       TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		previous_content TEXT NOT NULL,
		edited_at        TEXT NOT NULL,
		editor           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_message_edits_message ON message_edits(message_id)`,
	// v4 — reactions
	`CREATE TABLE IF NOT EXISTS reactions (
		id         TEXT PRIMARY KEY,
		message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		sender     TEXT NOT NULL,
		emoji      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(message_id, sender, emoji)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reactions_message ON reactions(message_id)`,
	// v5 — files
	`CREATE TABLE IF NOT EXISTS files (
		id           TEXT PRIMARY KEY,
		room_id      TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		sender       TEXT NOT NULL,
		filename     TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size         INTEGER NOT NULL,
		data         BLOB NOT NULL,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_files_room ON files(room_id)`,
	// v6 — read positions
	`CREATE TABLE IF NOT EXISTS read_positions (
		room_id       TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		sender        TEXT NOT NULL,
		last_read_seq INTEGER NOT NULL DEFAULT 0,
		updated_at    TEXT NOT NULL,
		PRIMARY KEY(room_id, sender)
	)`,
	// v7 — profiles
	`CREATE TABLE IF NOT EXISTS profiles (
		sender       TEXT PRIMARY KEY,
		display_name TEXT,
		sender_type  TEXT,
		avatar_url   TEXT,
		bio          TEXT,
		status_text  TEXT,
		metadata     TEXT NOT NULL DEFAULT '{}',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	// v8 — bookmarks
	`CREATE TABLE IF NOT EXISTS bookmarks (
		room_id    TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		sender     TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY(room_id, sender)
	)`,
	// v9 — outgoing webhooks
	`CREATE TABLE IF NOT EXISTS webhooks (
		id         TEXT PRIMARY KEY,
		room_id    TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		url        TEXT NOT NULL,
		events     TEXT NOT NULL DEFAULT '*',
		secret     TEXT,
		active     INTEGER NOT NULL DEFAULT 1,
		created_by TEXT NOT NULL DEFAULT 'anonymous',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhooks_room ON webhooks(room_id)`,
	// v10 — incoming webhooks
	`CREATE TABLE IF NOT EXISTS incoming_webhooks (
		id         TEXT PRIMARY KEY,
		room_id    TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		token      TEXT NOT NULL UNIQUE,
		active     INTEGER NOT NULL DEFAULT 1,
		created_by TEXT NOT NULL DEFAULT 'anonymous',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_incoming_webhooks_room ON incoming_webhooks(room_id)`,
	// v11 — webhook delivery log (append-only)
	`CREATE TABLE IF NOT EXISTS webhook_delivery_log (
		id               TEXT PRIMARY KEY,
		delivery_group   TEXT NOT NULL,
		webhook_id       TEXT NOT NULL,
		event            TEXT NOT NULL,
		url              TEXT NOT NULL,
		attempt          INTEGER NOT NULL,
		status           TEXT NOT NULL,
		status_code      INTEGER,
		error_message    TEXT,
		response_time_ms INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_log_group ON webhook_delivery_log(delivery_group)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_log_webhook ON webhook_delivery_log(webhook_id)`,
	// v12 — full-text index on messages, mirrored by fts_upsert/fts_delete/fts_rebuild.
	// message_id is UNINDEXED so MATCH only searches content/sender; rows are
	// keyed by message_id rather than rowid since message ids are opaque text.
	`CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
		message_id UNINDEXED, content, sender, tokenize='porter'
	)`,
	// v13 — enable WAL mode (idempotent, also set at connection open)
	`PRAGMA journal_mode=WAL`,
}

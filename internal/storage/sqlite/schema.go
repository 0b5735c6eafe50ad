package sqlite

// schema is executed once against a freshly opened database. It is
// idempotent (CREATE ... IF NOT EXISTS throughout) so reopening an existing
// qipu.db is cheap and safe, matching the teacher's ephemeral store's
// initSchema pattern.
const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	type           TEXT NOT NULL,
	path           TEXT NOT NULL,
	created        TEXT NOT NULL,
	updated        TEXT NOT NULL,
	body           TEXT NOT NULL DEFAULT '',
	mtime          INTEGER NOT NULL,
	value          INTEGER,
	compacts_json  TEXT NOT NULL DEFAULT '[]',
	sources_json   TEXT NOT NULL DEFAULT '[]',
	custom_json    TEXT NOT NULL DEFAULT '{}',
	index_level    INTEGER NOT NULL DEFAULT 1,
	author         TEXT,
	verified       INTEGER,
	source         TEXT,
	generated_by   TEXT,
	prompt_hash    TEXT
);

CREATE TABLE IF NOT EXISTS tags (
	note_id TEXT NOT NULL,
	tag     TEXT NOT NULL,
	FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
CREATE INDEX IF NOT EXISTS idx_tags_note_id ON tags(note_id);

CREATE TABLE IF NOT EXISTS edges (
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	link_type TEXT NOT NULL,
	source    TEXT NOT NULL, -- 'typed' | 'inline'
	inline    INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (source_id) REFERENCES notes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

CREATE TABLE IF NOT EXISTS unresolved (
	source_id  TEXT NOT NULL,
	target_ref TEXT NOT NULL,
	FOREIGN KEY (source_id) REFERENCES notes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_unresolved_source ON unresolved(source_id);

-- notes_fts is a standalone (non-external-content) FTS5 table keyed by an
-- unindexed id column rather than SQLite rowid aliasing: the metadata
-- database is wholly regenerable from the filesystem (spec.md §4.4), so the
-- extra bookkeeping external-content tables need to stay in sync with
-- their rowid source isn't worth the complexity here. Mirroring happens by
-- delete-then-insert keyed on id (see UpsertNote).
CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
	id UNINDEXED, title, body, tags
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// schemaVersion is bumped whenever the schema above changes shape in a way
// incompatible with rows written under an older version. On a mismatch,
// Open drops and recreates every table rather than migrating in place
// (spec.md §3); it does not reinsert any notes, so the tables stay empty
// until the next index build refills them from the filesystem. There is no
// migrations/ directory in this store the way the teacher's
// internal/storage/sqlite/migrations has one, because the database is
// wholly regenerable from the filesystem.
const schemaVersion = "1"

const metaSchemaVersionKey = "schema_version"

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

// ResolvedEdge is an outbound edge whose target was confirmed to exist in
// the current id set at resolution time.
type ResolvedEdge struct {
	TargetID string
	LinkType model.LinkType
	Source   model.EdgeSource
}

// NoteWrite bundles everything UpsertNote needs to keep notes, tags,
// edges, unresolved and notes_fts consistent in one transaction
// (spec.md §4.4 "Consistency protocol").
type NoteWrite struct {
	Note       *model.Note
	Mtime      int64 // note file mtime, nanosecond resolution
	Level      IndexLevel
	Edges      []ResolvedEdge
	Unresolved []string // target refs that don't resolve to a current id
}

// UpsertNote writes (or replaces) a single note's row, its tags, its
// outbound edges and unresolved refs, and its FTS mirror, all within one
// transaction.
func (d *DB) UpsertNote(ctx context.Context, w NoteWrite) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.withTx(ctx, func(tx *sql.Tx) error {
		return upsertNoteTx(tx, w)
	})
}

func upsertNoteTx(tx *sql.Tx, w NoteWrite) error {
	n := w.Note

	compactsJSON, err := json.Marshal(n.Compacts)
	if err != nil {
		return qerr.Wrap(qerr.Json, err, "marshaling compacts for %s", n.ID)
	}
	sourcesJSON, err := json.Marshal(n.Sources)
	if err != nil {
		return qerr.Wrap(qerr.Json, err, "marshaling sources for %s", n.ID)
	}
	customJSON, err := json.Marshal(n.Custom)
	if err != nil {
		return qerr.Wrap(qerr.Json, err, "marshaling custom for %s", n.ID)
	}

	var verified sql.NullInt64
	if n.Verified != nil {
		verified = sql.NullInt64{Int64: int64(boolToInt(*n.Verified)), Valid: true}
	}
	var value sql.NullInt64
	if n.Value != nil {
		value = sql.NullInt64{Int64: int64(*n.Value), Valid: true}
	}

	body := n.Body
	if w.Level < LevelFull {
		body = ""
	}

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, type, path, created, updated, body, mtime, value,
			compacts_json, sources_json, custom_json, index_level, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, type=excluded.type, path=excluded.path,
			created=excluded.created, updated=excluded.updated, body=excluded.body,
			mtime=excluded.mtime, value=excluded.value, compacts_json=excluded.compacts_json,
			sources_json=excluded.sources_json, custom_json=excluded.custom_json,
			index_level=excluded.index_level, verified=excluded.verified
	`, n.ID, n.Title, string(n.NoteType), n.Path, formatTime(n.Created), formatTime(n.Updated),
		body, w.Mtime, value, string(compactsJSON), string(sourcesJSON), string(customJSON),
		int(w.Level), verified)
	if err != nil {
		return wrapDBError("upsert note "+n.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM tags WHERE note_id = ?`, n.ID); err != nil {
		return wrapDBError("clear tags for "+n.ID, err)
	}
	for _, tag := range n.Tags {
		if _, err := tx.Exec(`INSERT INTO tags (note_id, tag) VALUES (?, ?)`, n.ID, tag); err != nil {
			return wrapDBError("insert tag for "+n.ID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM edges WHERE source_id = ?`, n.ID); err != nil {
		return wrapDBError("clear edges for "+n.ID, err)
	}
	for _, e := range w.Edges {
		if _, err := tx.Exec(`INSERT INTO edges (source_id, target_id, link_type, source, inline) VALUES (?, ?, ?, ?, ?)`,
			n.ID, e.TargetID, string(e.LinkType), string(e.Source), boolToInt(e.Source == model.SourceInline)); err != nil {
			return wrapDBError("insert edge for "+n.ID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM unresolved WHERE source_id = ?`, n.ID); err != nil {
		return wrapDBError("clear unresolved for "+n.ID, err)
	}
	for _, ref := range w.Unresolved {
		if _, err := tx.Exec(`INSERT INTO unresolved (source_id, target_ref) VALUES (?, ?)`, n.ID, ref); err != nil {
			return wrapDBError("insert unresolved for "+n.ID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE id = ?`, n.ID); err != nil {
		return wrapDBError("clear fts for "+n.ID, err)
	}
	if _, err := tx.Exec(`INSERT INTO notes_fts (id, title, body, tags) VALUES (?, ?, ?, ?)`,
		n.ID, n.Title, body, sortedTagString(n.Tags)); err != nil {
		return wrapDBError("insert fts for "+n.ID, err)
	}

	return nil
}

// DeleteNote removes a note's row and every dependent row (tags, edges
// outbound, unresolved, FTS mirror). Edges where this note is the target
// are left for the reindex of the edge's source note to clean up, matching
// spec.md §3 ("edges are derived artifacts: rewritten on every note save").
func (d *DB) DeleteNote(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.withTx(ctx, func(tx *sql.Tx) error {
		return deleteNoteTx(tx, id)
	})
}

func deleteNoteTx(tx *sql.Tx, id string) error {
	for _, stmt := range []string{
		`DELETE FROM tags WHERE note_id = ?`,
		`DELETE FROM edges WHERE source_id = ?`,
		`DELETE FROM unresolved WHERE source_id = ?`,
		`DELETE FROM notes_fts WHERE id = ?`,
		`DELETE FROM notes WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return wrapDBError("delete note "+id, err)
		}
	}
	return nil
}

// NoteRow is the subset of a notes row used by index/validation queries
// that don't need the full model.Note (avoids re-parsing JSON columns on
// every listing).
type NoteRow struct {
	ID         string
	Title      string
	Type       model.NoteType
	Path       string
	Mtime      int64
	IndexLevel IndexLevel
}

// GetPath returns the stored path for id, used by store.GetNote as a hint
// before falling back to a filesystem scan (spec.md §4.3).
func (d *DB) GetPath(ctx context.Context, id string) (string, error) {
	var path string
	err := d.sql.QueryRowContext(ctx, `SELECT path FROM notes WHERE id = ?`, id).Scan(&path)
	if err != nil {
		return "", wrapDBError("get path for "+id, err)
	}
	return path, nil
}

// AllIDs returns every note id currently in the database, used by the index
// builder to decide which link targets resolve.
func (d *DB) AllIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id FROM notes`)
	if err != nil {
		return nil, wrapDBError("list ids", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan id", err)
		}
		ids[id] = true
	}
	return ids, wrapDBError("iterate ids", rows.Err())
}

// ListRows returns a summary row per note, ordered by id.
func (d *DB) ListRows(ctx context.Context) ([]NoteRow, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, title, type, path, mtime, index_level FROM notes ORDER BY id`)
	if err != nil {
		return nil, wrapDBError("list rows", err)
	}
	defer func() { _ = rows.Close() }()

	var out []NoteRow
	for rows.Next() {
		var r NoteRow
		var level int
		if err := rows.Scan(&r.ID, &r.Title, &r.Type, &r.Path, &r.Mtime, &level); err != nil {
			return nil, wrapDBError("scan row", err)
		}
		r.IndexLevel = IndexLevel(level)
		out = append(out, r)
	}
	return out, wrapDBError("iterate rows", rows.Err())
}

// OutboundEdges returns every edge whose source_id is id.
func (d *DB) OutboundEdges(ctx context.Context, id string) ([]model.Edge, error) {
	return d.edgesWhere(ctx, `source_id = ?`, id, false)
}

// InboundEdges returns every edge whose target_id is id.
func (d *DB) InboundEdges(ctx context.Context, id string) ([]model.Edge, error) {
	return d.edgesWhere(ctx, `target_id = ?`, id, true)
}

func (d *DB) edgesWhere(ctx context.Context, clause, id string, inbound bool) ([]model.Edge, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT source_id, target_id, link_type, source FROM edges WHERE `+clause, id)
	if err != nil {
		return nil, wrapDBError("query edges", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Edge
	for rows.Next() {
		var e model.Edge
		var source string
		if err := rows.Scan(&e.From, &e.To, &e.LinkType, &source); err != nil {
			return nil, wrapDBError("scan edge", err)
		}
		e.Source = model.EdgeSource(source)
		out = append(out, e)
	}
	return out, wrapDBError("iterate edges", rows.Err())
}

// AllTypedEdges returns every edge whose source is a typed (frontmatter)
// link, used by ontology validation (spec.md §4.4 "all typed edges, for
// ontology checks") — inline and virtual-inverse edges carry no declared
// link type to validate against the ontology, so they're excluded here.
func (d *DB) AllTypedEdges(ctx context.Context) ([]model.Edge, error) {
	return d.edgesWhere(ctx, `source = ?`, string(model.SourceTyped), false)
}

// Metadata fetches a note's core fields without the body, for graph
// traversal which only needs id/type/value/tags.
type Metadata struct {
	ID       string
	Title    string
	Type     model.NoteType
	Value    int
	Verified bool
	Tags     []string
}

// GetMetadata returns a note's lightweight metadata.
func (d *DB) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	var m Metadata
	var typ string
	var value sql.NullInt64
	var verified sql.NullInt64
	err := d.sql.QueryRowContext(ctx, `SELECT id, title, type, value, verified FROM notes WHERE id = ?`, id).
		Scan(&m.ID, &m.Title, &typ, &value, &verified)
	if err != nil {
		return nil, wrapDBError("get metadata for "+id, err)
	}
	m.Type = model.NewNoteType(typ)
	if value.Valid {
		m.Value = int(value.Int64)
	} else {
		m.Value = model.DefaultValue
	}
	m.Verified = verified.Valid && verified.Int64 != 0

	tagRows, err := d.sql.QueryContext(ctx, `SELECT tag FROM tags WHERE note_id = ? ORDER BY tag`, id)
	if err != nil {
		return nil, wrapDBError("get tags for "+id, err)
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return nil, wrapDBError("scan tag", err)
		}
		m.Tags = append(m.Tags, tag)
	}

	return &m, wrapDBError("iterate tags", tagRows.Err())
}

// Search runs a full-text query against notes_fts, returning matching ids
// ranked by FTS5's default bm25 relevance.
func (d *DB) Search(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id FROM notes_fts WHERE notes_fts MATCH ? ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, wrapDBError("fts search", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan fts hit", err)
		}
		ids = append(ids, id)
	}
	return ids, wrapDBError("iterate fts hits", rows.Err())
}

package sqlite

import "context"

// DuplicateGroup is a set of paths that all claim the same note id.
type DuplicateGroup struct {
	ID    string
	Paths []string
}

// DuplicateIDs finds ids claimed by more than one path. In a well-formed
// database this never happens (id is the primary key, so later upserts of
// an id replace the earlier row and the query returns no groups); doctor
// therefore re-derives duplicates by scanning the filesystem directly
// rather than querying notes (see internal/doctor).
//
// This query exists for completeness against spec.md §4.4's validation
// list; internal/doctor is the primary caller and supplies its own
// filesystem-derived duplicate map since the PK constraint means at most
// one row per id survives in this table.
func (d *DB) DuplicateIDs(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, COUNT(*) c FROM notes GROUP BY id HAVING c > 1
	`)
	if err != nil {
		return nil, wrapDBError("duplicate ids", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DuplicateGroup
	for rows.Next() {
		var g DuplicateGroup
		var count int
		if err := rows.Scan(&g.ID, &count); err != nil {
			return nil, wrapDBError("scan duplicate", err)
		}
		out = append(out, g)
	}
	return out, wrapDBError("iterate duplicates", rows.Err())
}

// UnresolvedRef is a dangling reference recorded during edge resolution.
type UnresolvedRef struct {
	SourceID  string
	TargetRef string
}

// AllUnresolved returns every unresolved row (broken links, spec.md §4.4).
func (d *DB) AllUnresolved(ctx context.Context) ([]UnresolvedRef, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT source_id, target_ref FROM unresolved ORDER BY source_id, target_ref`)
	if err != nil {
		return nil, wrapDBError("unresolved refs", err)
	}
	defer func() { _ = rows.Close() }()

	var out []UnresolvedRef
	for rows.Next() {
		var u UnresolvedRef
		if err := rows.Scan(&u.SourceID, &u.TargetRef); err != nil {
			return nil, wrapDBError("scan unresolved", err)
		}
		out = append(out, u)
	}
	return out, wrapDBError("iterate unresolved", rows.Err())
}

// OrphanIDs returns every note id with zero inbound edges (warning-only
// category per spec.md §4.10).
func (d *DB) OrphanIDs(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT n.id FROM notes n
		WHERE NOT EXISTS (SELECT 1 FROM edges e WHERE e.target_id = n.id)
		ORDER BY n.id
	`)
	if err != nil {
		return nil, wrapDBError("orphan ids", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan orphan", err)
		}
		out = append(out, id)
	}
	return out, wrapDBError("iterate orphans", rows.Err())
}

// MtimeSample returns up to n (id, path, stored mtime) rows for a random
// consistency spot-check against the filesystem (spec.md §4.4 "a small
// random sample mtime consistency check").
func (d *DB) MtimeSample(ctx context.Context, n int) ([]NoteRow, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, title, type, path, mtime, index_level FROM notes
		ORDER BY RANDOM() LIMIT ?
	`, n)
	if err != nil {
		return nil, wrapDBError("mtime sample", err)
	}
	defer func() { _ = rows.Close() }()

	var out []NoteRow
	for rows.Next() {
		var r NoteRow
		var level int
		if err := rows.Scan(&r.ID, &r.Title, &r.Type, &r.Path, &r.Mtime, &level); err != nil {
			return nil, wrapDBError("scan sample row", err)
		}
		r.IndexLevel = IndexLevel(level)
		out = append(out, r)
	}
	return out, wrapDBError("iterate sample", rows.Err())
}

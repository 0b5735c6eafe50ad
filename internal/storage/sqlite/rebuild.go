package sqlite

import (
	"context"
	"database/sql"
	"os"

	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

// ProgressFunc reports rebuild/reindex progress; returning an error aborts
// the enclosing transaction (spec.md §5 "cancellation is cooperative").
type ProgressFunc func(done, total int, lastID string) error

// FullRebuild clears tags/edges/notes/unresolved/fts and reinserts every
// write in writes, all within a single transaction (spec.md §4.4).
func (d *DB) FullRebuild(ctx context.Context, writes []NoteWrite, progress ProgressFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.withTx(ctx, func(tx *sql.Tx) error {
		for _, tbl := range []string{"notes_fts", "unresolved", "edges", "tags", "notes"} {
			if _, err := tx.Exec("DELETE FROM " + tbl); err != nil {
				return wrapDBError("clear "+tbl, err)
			}
		}

		total := len(writes)
		for i, w := range writes {
			if err := upsertNoteTx(tx, w); err != nil {
				return err
			}
			if progress != nil {
				if err := progress(i+1, total, w.Note.ID); err != nil {
					return qerr.Wrap(qerr.Other, err, "rebuild cancelled")
				}
			}
		}
		return nil
	})
}

// StoredMtime returns the mtime recorded for id's current row, or
// (0, false) if the id has no row.
func (d *DB) StoredMtime(ctx context.Context, id string) (int64, bool, error) {
	var mtime int64
	err := d.sql.QueryRowContext(ctx, `SELECT mtime FROM notes WHERE id = ?`, id).Scan(&mtime)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapDBError("stored mtime for "+id, err)
	}
	return mtime, true, nil
}

// IncrementalRepair reconciles the database against the current set of
// on-disk notes: writes in writes are upserted only when Mtime is
// strictly greater than the stored mtime (or the id is new); any existing
// row whose path is not among keepPaths and no longer exists on disk is
// deleted. Runs in one
// transaction (spec.md §4.4 "Rebuild vs incremental").
func (d *DB) IncrementalRepair(ctx context.Context, writes []NoteWrite, keepPaths map[string]bool, progress ProgressFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT id, path, mtime FROM notes`)
		if err != nil {
			return wrapDBError("listing existing rows", err)
		}
		type existing struct {
			path  string
			mtime int64
		}
		current := make(map[string]existing)
		for rows.Next() {
			var id, path string
			var mtime int64
			if err := rows.Scan(&id, &path, &mtime); err != nil {
				rows.Close()
				return wrapDBError("scan existing row", err)
			}
			current[id] = existing{path: path, mtime: mtime}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return wrapDBError("iterate existing rows", err)
		}
		rows.Close()

		for id, e := range current {
			if !keepPaths[e.path] {
				if _, statErr := os.Stat(e.path); os.IsNotExist(statErr) {
					if err := deleteNoteTx(tx, id); err != nil {
						return err
					}
				}
			}
		}

		total := len(writes)
		for i, w := range writes {
			if prior, ok := current[w.Note.ID]; ok && w.Mtime <= prior.mtime {
				if progress != nil {
					if err := progress(i+1, total, w.Note.ID); err != nil {
						return qerr.Wrap(qerr.Other, err, "incremental repair cancelled")
					}
				}
				continue
			}
			if err := upsertNoteTx(tx, w); err != nil {
				return err
			}
			if progress != nil {
				if err := progress(i+1, total, w.Note.ID); err != nil {
					return qerr.Wrap(qerr.Other, err, "incremental repair cancelled")
				}
			}
		}
		return nil
	})
}

// Package sqlite is the metadata database (spec.md §4.4): a relational
// mirror of the filesystem store with a full-text index, kept consistent
// by a single-transaction write protocol and reconcilable by full or
// incremental rebuild. Grounded on the teacher's
// internal/storage/ephemeral (schema bootstrap, WAL pragmas) and
// internal/storage/sqlite (errors, config-table, query style) packages.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

// IndexLevel controls how much of a note is mirrored into the full-text
// table (spec.md §4.4).
type IndexLevel int

const (
	LevelBasic IndexLevel = 1
	LevelFull  IndexLevel = 2
)

// DB is the metadata database handle. Exclusive to its owning component;
// callers must not alias the underlying *sql.DB (spec.md §5).
type DB struct {
	sql  *sql.DB
	path string
	mu   sync.Mutex // serializes the single writer (spec.md §5)
}

// Open opens (creating if absent) the metadata database at path, in
// write-ahead-log mode so concurrent external readers see a consistent
// snapshot while a single writer proceeds (spec.md §5).
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, qerr.Wrap(qerr.Io, err, "creating directory for %s", path)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, qerr.Wrap(qerr.Io, err, "opening %s", path)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, qerr.Wrap(qerr.Io, err, "connecting to %s", path)
	}

	d := &DB{sql: sqlDB, path: path}
	if err := d.initSchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) initSchema() error {
	tx, err := d.sql.Begin()
	if err != nil {
		return qerr.Wrap(qerr.Io, err, "beginning schema transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return qerr.Wrap(qerr.Io, err, "executing schema statement: %s", stmt)
		}
	}

	var storedVersion string
	row := tx.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaSchemaVersionKey)
	switch err := row.Scan(&storedVersion); {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, metaSchemaVersionKey, schemaVersion); err != nil {
			return qerr.Wrap(qerr.Io, err, "seeding schema version")
		}
	case err != nil:
		return qerr.Wrap(qerr.Io, err, "reading schema version")
	case storedVersion != schemaVersion:
		// Schema mismatch triggers silent rebuild (spec.md §3): drop and
		// recreate every table rather than attempt an in-place migration.
		for _, tbl := range []string{"notes_fts", "unresolved", "edges", "tags", "notes", "meta"} {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + tbl); err != nil {
				return qerr.Wrap(qerr.Io, err, "dropping %s for schema rebuild", tbl)
			}
		}
		for _, stmt := range strings.Split(schema, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := tx.Exec(stmt); err != nil {
				return qerr.Wrap(qerr.Io, err, "re-executing schema statement: %s", stmt)
			}
		}
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, metaSchemaVersionKey, schemaVersion); err != nil {
			return qerr.Wrap(qerr.Io, err, "reseeding schema version")
		}
	}

	return tx.Commit()
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sql == nil {
		return nil
	}
	err := d.sql.Close()
	d.sql = nil
	return err
}

// Path returns the database file's path.
func (d *DB) Path() string { return d.path }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sortedTagString(tags []string) string {
	cp := append([]string(nil), tags...)
	sort.Strings(cp)
	return strings.Join(cp, " ")
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

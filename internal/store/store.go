package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/mwaldstein/qipu-sub003/internal/config"
	"github.com/mwaldstein/qipu-sub003/internal/idgen"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/noteio"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

// Store is the on-disk root: root path, layout directory name, loaded
// configuration. It holds no database handle. Per spec.md §5 ("Global/ambient state: None in the core.
// All state lives inside a Store value"), a Store owns no global state and
// is safe to use from a single owning goroutine.
type Store struct {
	Root   string // directory containing notes/, mocs/, etc.
	DirName string // ".qipu" or "qipu"
	Config *config.Config
}

// StoreDir returns the store's hidden/visible layout directory (root/.qipu
// or root/qipu).
func (s *Store) StoreDir() string { return filepath.Join(s.Root, s.DirName) }

func (s *Store) notesDir() string       { return filepath.Join(s.StoreDir(), NotesDir) }
func (s *Store) mocsDir() string        { return filepath.Join(s.StoreDir(), MOCsDir) }
func (s *Store) attachmentsDir() string { return filepath.Join(s.StoreDir(), AttachmentsDir) }
func (s *Store) templatesDir() string   { return filepath.Join(s.StoreDir(), TemplatesDir) }
func (s *Store) cacheDir() string       { return filepath.Join(s.StoreDir(), CacheDir) }

// DBPath returns the metadata database file's path (spec.md §6).
func (s *Store) DBPath() string { return filepath.Join(s.StoreDir(), DBFileName) }

// NotesDirPath, MOCsDirPath, AttachmentsDirPath, TemplatesDirPath, CacheDirPath
// expose the store's subdirectories to collaborators (index builder,
// doctor) that need to enumerate or populate them directly.
func (s *Store) NotesDirPath() string       { return s.notesDir() }
func (s *Store) MOCsDirPath() string        { return s.mocsDir() }
func (s *Store) AttachmentsDirPath() string { return s.attachmentsDir() }
func (s *Store) TemplatesDirPath() string   { return s.templatesDir() }
func (s *Store) CacheDirPath() string       { return s.cacheDir() }

// Init idempotently initializes a fresh store rooted at root: creates the
// layout directories, writes a default config.toml if absent, and
// maintains .gitignore to cover qipu.db and .cache/ (spec.md §3, §6, and
// the original_source `setup`/`workspace` supplement, SPEC_FULL.md §12.5).
func Init(root string, preferHidden bool) (*Store, error) {
	dirName := VisibleDirName
	if preferHidden {
		dirName = HiddenDirName
	}
	// Idempotent: if either layout already exists, use it instead of
	// creating a second one.
	if existingRoot, existingDir, err := Discover(root); err == nil && existingRoot == root {
		dirName = existingDir
	}

	s := &Store{Root: root, DirName: dirName}
	for _, dir := range []string{s.notesDir(), s.mocsDir(), s.attachmentsDir(), s.templatesDir(), s.cacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, qerr.Wrap(qerr.Io, err, "creating store directory %s", dir)
		}
	}

	cfg, err := config.Load(s.StoreDir())
	if err != nil {
		return nil, err
	}
	if err := cfg.Save(s.StoreDir()); err != nil {
		return nil, err
	}
	s.Config = cfg

	if err := ensureGitignore(s.StoreDir()); err != nil {
		return nil, err
	}

	return s, nil
}

// Open opens an existing store found at root/dirName, validating the
// layout is present.
func Open(root, dirName string) (*Store, error) {
	storeDir := filepath.Join(root, dirName)
	info, err := os.Stat(storeDir)
	if err != nil || !info.IsDir() {
		return nil, qerr.New(qerr.InvalidStore, "store directory %s does not exist", storeDir)
	}

	s := &Store{Root: root, DirName: dirName}
	for _, dir := range []string{s.notesDir(), s.mocsDir()} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return nil, qerr.New(qerr.InvalidStore, "store at %s is missing required directory %s", storeDir, dir)
		}
	}

	cfg, err := config.Load(storeDir)
	if err != nil {
		return nil, err
	}
	s.Config = cfg

	return s, nil
}

// OpenNearest discovers and opens the nearest ancestor store from startDir.
func OpenNearest(startDir string) (*Store, error) {
	root, dirName, err := Discover(startDir)
	if err != nil {
		return nil, qerr.Wrap(qerr.StoreNotFound, err, "locating store from %s", startDir)
	}
	return Open(root, dirName)
}

// dirFor returns the directory a note of the given type is stored in.
func (s *Store) dirFor(t model.NoteType) string {
	if t.IsMOC() {
		return s.mocsDir()
	}
	return s.notesDir()
}

// ListNotes enumerates every note file under notes/ and mocs/, parsing each
// one (spec.md §4.3: "enumerate all notes").
func (s *Store) ListNotes() ([]*model.Note, error) {
	var notes []*model.Note
	for _, dir := range []string{s.notesDir(), s.mocsDir()} {
		entries, err := walkMarkdown(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range entries {
			note, err := s.readNoteFile(path)
			if err != nil {
				return nil, err
			}
			notes = append(notes, note)
		}
	}
	return notes, nil
}

// walkMarkdown lists every *.md file directly within dir (non-recursive;
// the teacher's `count_note_files`-equivalent treats notes/mocs as flat
// directories per spec.md §4.5).
func walkMarkdown(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, qerr.Wrap(qerr.Io, err, "reading directory %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".md") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func (s *Store) readNoteFile(path string) (*model.Note, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path enumerated from the store's own directories
	if err != nil {
		return nil, qerr.Wrap(qerr.Io, err, "reading note %s", path)
	}
	note, err := noteio.Parse(string(data), path)
	if err != nil {
		return nil, err
	}
	note.Path = path
	return note, nil
}

// GetNote fetches a note by ID. pathHint, when non-empty (typically
// supplied by the metadata database), is tried first; on miss, or when
// empty, falls back to a filesystem scan of notes/ and mocs/
// (spec.md §4.3).
func (s *Store) GetNote(id string, pathHint string) (*model.Note, error) {
	if pathHint != "" {
		if note, err := s.readNoteFile(pathHint); err == nil && note.ID == id {
			return note, nil
		}
	}

	for _, dir := range []string{s.notesDir(), s.mocsDir()} {
		paths, err := walkMarkdown(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			note, err := s.readNoteFile(path)
			if err != nil {
				continue
			}
			if note.ID == id {
				return note, nil
			}
		}
	}

	return nil, qerr.New(qerr.NoteNotFound, "no note with id %q", id)
}

// SaveNote writes note to disk, establishing the invariant that the
// on-disk content after a save equals serialize(note) (spec.md §4.3). A
// save is a no-op write if the serialized bytes are unchanged
// (content-equality gate, spec.md §3). Returns whether a write occurred.
func (s *Store) SaveNote(note *model.Note) (wrote bool, err error) {
	if err := note.Validate(); err != nil {
		return false, qerr.Wrap(qerr.InvalidFrontmatter, err, "note %s", note.ID)
	}

	serialized, err := noteio.Serialize(note)
	if err != nil {
		return false, err
	}

	path := note.Path
	if path == "" {
		path = filepath.Join(s.dirFor(note.NoteType), idgen.Filename(note.ID, note.Title, "md"))
		note.Path = path
	}

	if existing, readErr := os.ReadFile(path); readErr == nil && string(existing) == serialized { // #nosec G304
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, qerr.Wrap(qerr.Io, err, "creating directory for %s", path)
	}
	if err := atomic.WriteFile(path, strings.NewReader(serialized)); err != nil {
		return false, qerr.Wrap(qerr.Io, err, "writing note %s", path)
	}

	return true, nil
}

// DeleteNote removes a note's file from disk. Removing the corresponding
// database rows is the caller's (index's) responsibility, since the store
// has no database handle of its own (spec.md §3: "deleted by removing the
// file and its DB rows").
func (s *Store) DeleteNote(note *model.Note) error {
	if note.Path == "" {
		return qerr.New(qerr.NoteNotFound, "note %s has no known path", note.ID)
	}
	if err := os.Remove(note.Path); err != nil && !os.IsNotExist(err) {
		return qerr.Wrap(qerr.Io, err, "deleting note %s", note.Path)
	}
	return nil
}

// Template returns the default body for a note type, if a template file
// exists at templates/<type>.md. Returns ("", false) when no template is
// configured for that type.
func (s *Store) Template(t model.NoteType) (string, bool) {
	path := filepath.Join(s.templatesDir(), t.String()+".md")
	data, err := os.ReadFile(path) // #nosec G304 -- store-relative path
	if err != nil {
		return "", false
	}
	return string(data), true
}

// CountNoteFiles walks notes/ and mocs/ counting .md entries, used by the
// adaptive index strategy to decide basic vs quick indexing (spec.md §4.5).
func (s *Store) CountNoteFiles() (int, error) {
	total := 0
	for _, dir := range []string{s.notesDir(), s.mocsDir()} {
		entries, err := fs.ReadDir(os.DirFS(dir), ".")
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, qerr.Wrap(qerr.Io, err, "counting notes in %s", dir)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				total++
			}
		}
	}
	return total, nil
}

func ensureGitignore(storeDir string) error {
	path := filepath.Join(storeDir, ".gitignore")
	const want = "qipu.db\nqipu.db-*\n.cache/\n"

	existing, err := os.ReadFile(path) // #nosec G304 -- store-relative path
	if err == nil {
		if strings.Contains(string(existing), "qipu.db") {
			return nil
		}
		merged := string(existing)
		if !strings.HasSuffix(merged, "\n") {
			merged += "\n"
		}
		merged += want
		return atomic.WriteFile(path, strings.NewReader(merged))
	}
	if !os.IsNotExist(err) {
		return qerr.Wrap(qerr.Io, err, "reading %s", path)
	}
	return atomic.WriteFile(path, strings.NewReader(want))
}

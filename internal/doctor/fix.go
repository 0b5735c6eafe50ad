package doctor

import (
	"context"
	"os"
)

// Fix applies the auto-repairable subset of issues (spec.md §4.10):
// duplicate_ids (the non-earliest path is removed; Check already reports
// only the paths to drop) and missing_files (the stale DB row is deleted).
// All other categories are report-only. Fix is idempotent: re-running it
// against issues from a fresh Check on an already-fixed store is a no-op.
func (d *Doctor) Fix(ctx context.Context, issues []Issue) (int, error) {
	fixed := 0
	for _, issue := range issues {
		if !issue.Fixable {
			continue
		}
		switch issue.Category {
		case CategoryDuplicateIDs:
			if err := os.Remove(issue.Path); err != nil && !os.IsNotExist(err) {
				return fixed, err
			}
			fixed++
		case CategoryMissingFiles:
			if err := d.DB.DeleteNote(ctx, issue.NoteID); err != nil {
				return fixed, err
			}
			fixed++
		}
	}
	return fixed, nil
}

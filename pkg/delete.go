package hashlaser

import (
	"fmt"
	"os"
	"sort"
)

// DeleteOptions controls DeleteDuplicates
type DeleteOptions struct {
	DryRun bool
	Keep   string // KeepFirst (default) or KeepLexical
}

// DeleteAction records what happened to one redundant copy
type DeleteAction struct {
	Hash    string
	Kept    string // the copy that stays on disk
	Path    string // the redundant copy
	Deleted bool   // true once the file has been removed
	DryRun  bool
	Skipped bool // the path is the kept file under another name; never removed
	Err     error
}

// DeleteResult is the outcome of a whole deletion batch
type DeleteResult struct {
	Actions []DeleteAction
}

// Deleted returns the number of files actually removed
func (dr *DeleteResult) Deleted() int {
	n := 0
	for _, a := range dr.Actions {
		if a.Deleted {
			n++
		}
	}
	return n
}

// Failed returns the actions whose removal failed
func (dr *DeleteResult) Failed() []DeleteAction {
	var failed []DeleteAction
	for _, a := range dr.Actions {
		if a.Err != nil {
			failed = append(failed, a)
		}
	}
	return failed
}

// DeleteDuplicates keeps one file per group and removes the others.
// Groups with fewer than two files are ignored. A failed removal is recorded
// and the batch carries on; nothing is rolled back.
//
// The keep policy chooses among the regular files of a group, so a symlink is
// kept only when every path in the group is one. A redundant path that is
// the kept file under another name is skipped.
func DeleteDuplicates(groups []DuplicateGroup, opts DeleteOptions) (*DeleteResult, error) {
	defer VerboseEnter()()

	keep := opts.Keep
	if keep == "" {
		keep = KeepFirst
	}
	if err := ValidateKeepPolicy(keep); err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	for _, group := range groups {
		if len(group.Files) < 2 {
			continue
		}

		kept, redundant := splitKeep(group.Files, keep)
		keptInfo, keptErr := os.Stat(kept)
		for _, path := range redundant {
			action := DeleteAction{
				Hash:   group.Hash,
				Kept:   kept,
				Path:   path,
				DryRun: opts.DryRun,
			}

			if keptErr == nil && sameAsKept(path, keptInfo) {
				action.Skipped = true
				VerboseLog(1, "delete: not removing %s, it is the same file as %s", path, kept)
			} else if !opts.DryRun {
				if err := os.Remove(path); err != nil {
					action.Err = fmt.Errorf("failed to delete %s: %w", path, err)
				} else {
					action.Deleted = true
				}
			}

			if IsDebugEnabled("delete") {
				VerboseLog(2, "delete: hash=%s keep=%s path=%s deleted=%t err=%v",
					group.Hash, kept, path, action.Deleted, action.Err)
			}
			result.Actions = append(result.Actions, action)
		}
	}

	return result, nil
}

// splitKeep picks the surviving copy and returns the rest in their original
// order. Symlinks are only candidates when the group has no regular file.
func splitKeep(files []string, keep string) (string, []string) {
	candidates := make([]string, 0, len(files))
	for _, f := range files {
		if !isSymlink(f) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		candidates = files
	}

	kept := candidates[0]
	if keep == KeepLexical {
		sorted := make([]string, len(candidates))
		copy(sorted, candidates)
		sort.Strings(sorted)
		kept = sorted[0]
	}

	redundant := make([]string, 0, len(files)-1)
	for _, f := range files {
		if f != kept {
			redundant = append(redundant, f)
		}
	}
	return kept, redundant
}

// isSymlink reports whether path itself is a symlink; unreadable paths are not
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// sameAsKept reports whether removing path would remove the kept content.
// Removing a symlink only removes the link, so links never match.
func sameAsKept(path string, keptInfo os.FileInfo) bool {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink != 0 {
		return false
	}
	return os.SameFile(info, keptInfo)
}

package hashlaser

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// TraverseOptions controls how CollectFiles walks a directory tree
type TraverseOptions struct {
	SymlinkMode string      // SymlinkModeNone (default), SymlinkModeContained or SymlinkModeAll
	Ignore      *IgnoreList // optional, matched against root-relative paths
}

// dirKey identifies a directory independently of the path used to reach it
type dirKey struct {
	dev uint64
	ino uint64
}

// traversal holds the state of one CollectFiles call
type traversal struct {
	root         string
	resolvedRoot string
	opts         TraverseOptions
	visited      map[dirKey]struct{}
	files        []string
}

// CollectFiles returns every regular file reachable from root.
// Directories are walked with an explicit stack in lexical order; unreadable
// directories are skipped. An empty or inaccessible root yields an empty list.
// Each directory is entered at most once, keyed by device and inode, so
// followed symlinks cannot cause cycles.
func CollectFiles(root string, opts TraverseOptions) []string {
	defer VerboseEnter()()

	if opts.SymlinkMode == "" {
		opts.SymlinkMode = SymlinkModeNone
	}

	t := &traversal{
		root:    filepath.Clean(root),
		opts:    opts,
		visited: make(map[dirKey]struct{}),
	}

	info, err := os.Stat(t.root)
	if err != nil || !info.IsDir() {
		VerboseLog(1, "traverse: root %s is not a readable directory", root)
		return []string{}
	}

	if resolved, err := filepath.EvalSymlinks(t.root); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			t.resolvedRoot = abs
		}
	}

	t.walk()
	return t.files
}

func (t *traversal) walk() {
	stack := []string{t.root}

	for len(stack) > 0 {
		currentDir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !t.markVisited(currentDir) {
			if IsDebugEnabled("traverse") {
				VerboseLog(2, "traverse: already visited %s", currentDir)
			}
			continue
		}

		entries, err := os.ReadDir(currentDir)
		if err != nil {
			VerboseLog(1, "traverse: skipping unreadable directory %s: %v", currentDir, err)
			continue
		}

		// os.ReadDir sorts by name; push subdirectories in reverse so they pop in order
		var subdirs []string
		for _, entry := range entries {
			fullPath := filepath.Join(currentDir, entry.Name())

			if t.ignored(fullPath) {
				if IsDebugEnabled("traverse") {
					VerboseLog(2, "traverse: ignoring %s", fullPath)
				}
				continue
			}

			mode := entry.Type()
			switch {
			case mode.IsDir():
				subdirs = append(subdirs, fullPath)
			case mode.IsRegular():
				t.files = append(t.files, fullPath)
			case mode&os.ModeSymlink != 0:
				if dir, isDir := t.resolveSymlink(fullPath); isDir {
					subdirs = append(subdirs, dir)
				}
			}
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

// resolveSymlink records file symlinks directly and reports directory
// symlinks that the current mode allows us to enter
func (t *traversal) resolveSymlink(linkPath string) (string, bool) {
	targetInfo, err := os.Stat(linkPath)
	if err != nil {
		if IsDebugEnabled("traverse") {
			VerboseLog(2, "traverse: skipping broken symlink %s", linkPath)
		}
		return "", false
	}

	if targetInfo.Mode().IsRegular() {
		t.files = append(t.files, linkPath)
		return "", false
	}
	if !targetInfo.IsDir() {
		return "", false
	}

	switch t.opts.SymlinkMode {
	case SymlinkModeAll:
		return linkPath, true
	case SymlinkModeContained:
		target, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			return "", false
		}
		if !isPathContained(target, t.resolvedRoot) {
			VerboseLog(2, "traverse: not following %s, target %s is outside the root", linkPath, target)
			return "", false
		}
		return linkPath, true
	default:
		return "", false
	}
}

func (t *traversal) markVisited(dir string) bool {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		// Without an identity we cannot detect cycles; still walk it once by path
		return true
	}

	key := dirKey{dev: uint64(st.Dev), ino: uint64(st.Ino)}
	if _, seen := t.visited[key]; seen {
		return false
	}
	t.visited[key] = struct{}{}
	return true
}

func (t *traversal) ignored(fullPath string) bool {
	if t.opts.Ignore.Len() == 0 {
		return false
	}
	relPath, err := filepath.Rel(t.root, fullPath)
	if err != nil {
		return false
	}
	return t.opts.Ignore.ShouldIgnore(relPath)
}

// isPathContained checks if targetPath is containerPath or lies beneath it
func isPathContained(targetPath, containerPath string) bool {
	if containerPath == "" {
		return false
	}

	targetPath = filepath.Clean(targetPath)
	if !filepath.IsAbs(targetPath) {
		abs, err := filepath.Abs(targetPath)
		if err != nil {
			return false
		}
		targetPath = abs
	}

	if targetPath == containerPath {
		return true
	}

	containerWithSep := containerPath
	if !strings.HasSuffix(containerWithSep, string(filepath.Separator)) {
		containerWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(targetPath, containerWithSep)
}

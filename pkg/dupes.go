package hashlaser

import (
	"sort"
)

// Grouping maps a fingerprint to the paths that produced it. Paths are in
// worker merge order: each worker's results in the order it hashed them,
// workers taken by slot. Every hashed path appears in exactly one group.
type Grouping map[string][]string

// DuplicateGroup represents a group of files with the same hash
type DuplicateGroup struct {
	Hash  string   `json:"hash"`
	Files []string `json:"files"`
}

// Count returns the number of files in the group
func (g DuplicateGroup) Count() int {
	return len(g.Files)
}

// Add appends path under fingerprint
func (g Grouping) Add(fingerprint, path string) {
	g[fingerprint] = append(g[fingerprint], path)
}

// FileCount returns the number of paths across all groups
func (g Grouping) FileCount() int {
	n := 0
	for _, files := range g {
		n += len(files)
	}
	return n
}

// Duplicates returns the groups holding two or more files. The order of the
// groups is unspecified; use SortedDuplicates for stable output.
func (g Grouping) Duplicates() []DuplicateGroup {
	var result []DuplicateGroup
	for hash, files := range g {
		if len(files) > 1 {
			result = append(result, DuplicateGroup{
				Hash:  hash,
				Files: files,
			})
		}
	}
	return result
}

// Groups returns every group, including single-file ones, in unspecified order
func (g Grouping) Groups() []DuplicateGroup {
	result := make([]DuplicateGroup, 0, len(g))
	for hash, files := range g {
		result = append(result, DuplicateGroup{Hash: hash, Files: files})
	}
	return result
}

// SortFiles returns a copy of the group with its files in lexical order
func (g DuplicateGroup) SortFiles() DuplicateGroup {
	files := make([]string, len(g.Files))
	copy(files, g.Files)
	sort.Strings(files)
	return DuplicateGroup{Hash: g.Hash, Files: files}
}

// WastedBytes returns the bytes that deleting all but one copy would free, given the size of one copy
func (g DuplicateGroup) WastedBytes(size int64) int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return size * int64(len(g.Files)-1)
}

package hashlaser

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// Contexts attached to groups in a sorted view
const (
	DuplicateContext = "duplicate"
	UniqueContext    = "unique"
)

// groupSkiplist keeps groups ordered by fingerprint
type groupSkiplist struct {
	skiplist *zcsl.ZeroCopySkiplist[DuplicateGroup, string, string]
}

// newGroupSkiplist creates an empty fingerprint-ordered skiplist
func newGroupSkiplist(maxLevels int) *groupSkiplist {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(group *DuplicateGroup) string {
		return group.Hash
	}

	// Approximate encoded size, used by the skiplist for serialisation bookkeeping
	getItemSize := func(group *DuplicateGroup) int {
		size := len(group.Hash)
		for _, f := range group.Files {
			size += len(f)
		}
		return size
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &groupSkiplist{
		skiplist: zcsl.MakeZeroCopySkiplist[DuplicateGroup, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Insert adds a group under the given context
func (gs *groupSkiplist) Insert(group DuplicateGroup, context string) bool {
	return gs.skiplist.Insert(&group, context)
}

// ForEach walks groups in fingerprint order until the callback returns false
func (gs *groupSkiplist) ForEach(callback func(*DuplicateGroup, string) bool) {
	for current := gs.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item(), current.Context()) {
			break
		}
	}
}

// Length returns the number of groups held
func (gs *groupSkiplist) Length() int {
	return gs.skiplist.Length()
}

// buildGroupSkiplist loads a grouping into a sorted skiplist, tagging each
// group as duplicate or unique
func buildGroupSkiplist(g Grouping, includeUnique bool) *groupSkiplist {
	gs := newGroupSkiplist(16)
	for hash, files := range g {
		context := DuplicateContext
		if len(files) < 2 {
			if !includeUnique {
				continue
			}
			context = UniqueContext
		}
		gs.Insert(DuplicateGroup{Hash: hash, Files: files}, context)
	}
	return gs
}

// SortedDuplicates returns the groups with two or more files ordered by fingerprint.
// Files within a group keep worker merge order.
func SortedDuplicates(g Grouping) []DuplicateGroup {
	gs := buildGroupSkiplist(g, false)
	result := make([]DuplicateGroup, 0, gs.Length())
	gs.ForEach(func(group *DuplicateGroup, context string) bool {
		result = append(result, *group)
		return true
	})
	return result
}

// SortedGroups returns every group ordered by fingerprint together with its context
func SortedGroups(g Grouping, callback func(group DuplicateGroup, context string) bool) {
	gs := buildGroupSkiplist(g, true)
	gs.ForEach(func(group *DuplicateGroup, context string) bool {
		return callback(*group, context)
	})
}

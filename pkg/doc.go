// Package hashlaser finds files with identical content in a directory tree,
// writes JSON duplicate reports and removes redundant copies.
//
// # Core API
//
// The main entry point is Scanner, which walks a directory, filters the files
// it finds and fingerprints them on a pool of hash workers:
//
//	scanner, err := hashlaser.NewScanner(hashlaser.ScanOptions{})
//	criteria, err := hashlaser.ParseFilterCriteria("1K", "", "jpg,png", "")
//	result, err := scanner.ScanDirectory("/path/to/dir", criteria)
//
// The result maps each fingerprint to the files that produced it. Only groups
// with two or more files are duplicates:
//
//	for _, group := range hashlaser.SortedDuplicates(result.Grouping) {
//		fmt.Printf("Hash %s: %v\n", group.Hash, group.Files)
//	}
//
// Files that could not be hashed are not in the grouping; they are listed in
// result.Skipped with a SkipReason.
//
// # Reports and deletion
//
//	err := hashlaser.WriteJSONReport(result.Grouping, "report.json")
//	res, err := hashlaser.DeleteDuplicates(result.Grouping.Duplicates(),
//		hashlaser.DeleteOptions{DryRun: true})
//
// # Configuration
//
// Nothing is read from disk unless asked for. LoadConfig reads an INI file
// whose values feed ScanOptions; DefaultConfig returns the built-in values.
//
//	hashlaser.SetDebugFlags("scan,hash")
//	hashlaser.SetVerboseLevel(2)
package hashlaser

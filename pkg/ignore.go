package hashlaser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreList prunes files and directories from traversal by regular expression.
// Patterns are matched against the root-relative path with forward slashes.
type IgnoreList struct {
	patterns []*regexp.Regexp
}

// NewIgnoreList compiles the given patterns
func NewIgnoreList(patterns ...string) (*IgnoreList, error) {
	il := &IgnoreList{}
	for _, p := range patterns {
		if err := il.AddPattern(p); err != nil {
			return nil, err
		}
	}
	return il, nil
}

// LoadIgnoreFile appends the patterns found in an ignore file.
// Each line is a Go regular expression; blank lines and lines starting with # are skipped.
func (il *IgnoreList) LoadIgnoreFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern, err := regexp.Compile(line)
		if err != nil {
			return fmt.Errorf("invalid regex pattern at line %d: %s - %w", lineNum, line, err)
		}

		il.patterns = append(il.patterns, pattern)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ignore file: %w", err)
	}

	VerboseLog(2, "loaded ignore file %s (%d patterns total)", path, len(il.patterns))
	return nil
}

// AddPattern adds a new ignore pattern
func (il *IgnoreList) AddPattern(patternStr string) error {
	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %s - %w", patternStr, err)
	}

	il.patterns = append(il.patterns, pattern)
	return nil
}

// ShouldIgnore checks if a root-relative path matches any pattern
func (il *IgnoreList) ShouldIgnore(relativePath string) bool {
	if il == nil {
		return false
	}

	normalisedPath := filepath.ToSlash(relativePath)
	for _, pattern := range il.patterns {
		if pattern.MatchString(normalisedPath) {
			return true
		}
	}

	return false
}

// Len returns the number of loaded patterns
func (il *IgnoreList) Len() int {
	if il == nil {
		return 0
	}
	return len(il.patterns)
}

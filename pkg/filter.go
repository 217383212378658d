package hashlaser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

// FilterCriteria holds the optional predicates a candidate file must satisfy.
// A nil or empty field means "no constraint". All configured predicates must match.
// Treat a FilterCriteria as read-only once built; Matches is called from one goroutine
// during traversal but the value may be shared between scans.
type FilterCriteria struct {
	MinSize    *uint64        // inclusive lower bound in bytes
	MaxSize    *uint64        // inclusive upper bound in bytes
	Extensions []string       // allowed extensions without the leading dot, compared case-insensitively
	Pattern    *regexp.Regexp // matched against the base name only
}

// ParseFilterCriteria builds criteria from command-line style strings.
// Empty strings leave the corresponding predicate unset.
func ParseFilterCriteria(minSize, maxSize, extensions, pattern string) (*FilterCriteria, error) {
	fc := &FilterCriteria{}

	if minSize != "" {
		n, err := ParseSize(minSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --min value: %w", err)
		}
		fc.MinSize = &n
	}

	if maxSize != "" {
		n, err := ParseSize(maxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --max value: %w", err)
		}
		fc.MaxSize = &n
	}

	if fc.MinSize != nil && fc.MaxSize != nil && *fc.MinSize > *fc.MaxSize {
		Warnf("min size %d exceeds max size %d, no file can match", *fc.MinSize, *fc.MaxSize)
	}

	if extensions != "" {
		for _, ext := range strings.Split(extensions, ",") {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			fc.Extensions = append(fc.Extensions, ext)
		}
	}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --regex pattern %q: %w", pattern, err)
		}
		fc.Pattern = re
	}

	return fc, nil
}

// ParseSize parses a byte count such as "5000", "10K", "2MiB" or "1.5GB"
func ParseSize(sizeStr string) (uint64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}
	n, err := humanize.ParseBytes(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}
	return n, nil
}

// IsEmpty reports whether no predicate is configured
func (fc *FilterCriteria) IsEmpty() bool {
	return fc == nil || (fc.MinSize == nil && fc.MaxSize == nil && fc.Extensions == nil && fc.Pattern == nil)
}

// Matches reports whether the file at path satisfies every configured predicate
func (fc *FilterCriteria) Matches(path string) bool {
	if fc == nil {
		return true
	}
	return fc.checkSize(path) && fc.checkExtension(path) && fc.checkPattern(path)
}

// checkSize skips the check, rather than failing it, when the size cannot be read
func (fc *FilterCriteria) checkSize(path string) bool {
	if fc.MinSize == nil && fc.MaxSize == nil {
		return true
	}

	info, err := os.Stat(path)
	if err != nil {
		if IsDebugEnabled("filter") {
			VerboseLog(2, "filter: cannot stat %s, size check skipped: %v", path, err)
		}
		return true
	}

	size := uint64(info.Size())
	if fc.MinSize != nil && size < *fc.MinSize {
		return false
	}
	if fc.MaxSize != nil && size > *fc.MaxSize {
		return false
	}
	return true
}

func (fc *FilterCriteria) checkExtension(path string) bool {
	if fc.Extensions == nil {
		return true
	}

	ext, ok := fileExtension(path)
	if !ok {
		return false
	}
	for _, allowed := range fc.Extensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (fc *FilterCriteria) checkPattern(path string) bool {
	if fc.Pattern == nil {
		return true
	}

	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return false
	}
	return fc.Pattern.MatchString(name)
}

// fileExtension returns the extension of the base name without its dot.
// A leading dot alone (".bashrc") does not make an extension.
func fileExtension(path string) (string, bool) {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return "", false
	}
	return ext[1:], true
}

package hashlaser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/vectorio"
)

// maxIovecs is UIO_MAXIOV on Linux, the most buffers one writev call accepts
const maxIovecs = 1024

// Report is the persisted JSON report: {"duplicates": [{"hash": ..., "files": [...]}]}
type Report struct {
	Duplicates []DuplicateGroup `json:"duplicates"`
}

// NewReport keeps only the groups with two or more files
func NewReport(groups []DuplicateGroup) *Report {
	report := &Report{Duplicates: []DuplicateGroup{}}
	for _, group := range groups {
		if len(group.Files) > 1 {
			report.Duplicates = append(report.Duplicates, group)
		}
	}
	return report
}

// WriteJSONReport writes the duplicate groups of a grouping to outputPath,
// ordered by fingerprint
func WriteJSONReport(g Grouping, outputPath string) error {
	return NewReport(SortedDuplicates(g)).WriteFile(outputPath)
}

// encodeSegments renders the report as pretty-printed JSON split into one
// segment per group, so each group can be handed to writev as its own buffer
func (r *Report) encodeSegments() ([][]byte, error) {
	if len(r.Duplicates) == 0 {
		return [][]byte{[]byte("{\n  \"duplicates\": []\n}\n")}, nil
	}

	segments := make([][]byte, 0, len(r.Duplicates)+2)
	segments = append(segments, []byte("{\n  \"duplicates\": [\n    "))

	for i, group := range r.Duplicates {
		encoded, err := json.MarshalIndent(group, "    ", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode group %s: %w", group.Hash, err)
		}
		if i < len(r.Duplicates)-1 {
			encoded = append(encoded, []byte(",\n    ")...)
		}
		segments = append(segments, encoded)
	}

	segments = append(segments, []byte("\n  ]\n}\n"))
	return segments, nil
}

// Bytes returns the encoded report
func (r *Report) Bytes() ([]byte, error) {
	segments, err := r.encodeSegments()
	if err != nil {
		return nil, err
	}
	return bytes.Join(segments, nil), nil
}

// WriteFile writes the report next to outputPath under a temporary name and
// renames it into place once the write has completed
func (r *Report) WriteFile(outputPath string) error {
	defer VerboseEnter()()

	segments, err := r.encodeSegments()
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create report file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := writeSegments(tmp, segments); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("failed to move report into place at %s: %w", outputPath, err)
	}
	committed = true

	if IsDebugEnabled("report") {
		VerboseLog(2, "report: wrote %d groups to %s", len(r.Duplicates), outputPath)
	}
	return nil
}

// writeSegments writes all segments with writev, chunked to respect the IOV limit
func writeSegments(file *os.File, segments [][]byte) error {
	iovecs := make([]syscall.Iovec, 0, len(segments))
	expected := 0
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		iov := syscall.Iovec{Base: &seg[0]}
		iov.SetLen(len(seg))
		iovecs = append(iovecs, iov)
		expected += len(seg)
	}

	totalWritten := 0
	for offset := 0; offset < len(iovecs); offset += maxIovecs {
		end := offset + maxIovecs
		if end > len(iovecs) {
			end = len(iovecs)
		}

		chunk := iovecs[offset:end]
		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), chunk)
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		totalWritten += nw
	}

	if totalWritten != expected {
		return fmt.Errorf("report write incomplete: wrote %d bytes, expected %d", totalWritten, expected)
	}
	return nil
}

// ReadJSONReport parses a report written by WriteJSONReport
func ReadJSONReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &report, nil
}

package hashlaser

import (
	"path/filepath"
	"testing"
)

func TestIgnoreList_LoadIgnoreFile(t *testing.T) {
	tempDir := t.TempDir()
	ignorePath := filepath.Join(tempDir, "ignore")
	writeTestFile(t, ignorePath, `# editor files
\.swp$

^node_modules(/|$)
`)

	il, err := NewIgnoreList()
	if err != nil {
		t.Fatalf("Failed to create ignore list: %v", err)
	}
	if err := il.LoadIgnoreFile(ignorePath); err != nil {
		t.Fatalf("Failed to load ignore file: %v", err)
	}

	if il.Len() != 2 {
		t.Errorf("Expected 2 patterns, got %d", il.Len())
	}

	tests := []struct {
		path string
		want bool
	}{
		{"notes.txt.swp", true},
		{"node_modules", true},
		{"node_modules/pkg/index.js", true},
		{"src/node_modules_backup/a.js", false},
		{"README.md", false},
	}

	for _, tt := range tests {
		if got := il.ShouldIgnore(tt.path); got != tt.want {
			t.Errorf("ShouldIgnore(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIgnoreList_InvalidPattern(t *testing.T) {
	if _, err := NewIgnoreList("(broken"); err == nil {
		t.Error("Expected error for invalid pattern")
	}

	tempDir := t.TempDir()
	ignorePath := filepath.Join(tempDir, "ignore")
	writeTestFile(t, ignorePath, "ok\n[bad\n")

	il, _ := NewIgnoreList()
	if err := il.LoadIgnoreFile(ignorePath); err == nil {
		t.Error("Expected error for invalid pattern in file")
	}

	if err := il.LoadIgnoreFile(filepath.Join(tempDir, "missing")); err == nil {
		t.Error("Expected error for missing ignore file")
	}
}

func TestIgnoreList_Nil(t *testing.T) {
	var il *IgnoreList
	if il.ShouldIgnore("anything") {
		t.Error("Nil ignore list should ignore nothing")
	}
	if il.Len() != 0 {
		t.Errorf("Expected nil list length 0, got %d", il.Len())
	}
}

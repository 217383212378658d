package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hashlaser "github.com/mattkeenan/hashlaser/pkg"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// setupTree creates two duplicates, one unique file and a larger pair in a subdirectory
func setupTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file1.txt"), "duplicate content")
	writeFile(t, filepath.Join(dir, "file2.txt"), "duplicate content")
	writeFile(t, filepath.Join(dir, "file3.txt"), "unique content")
	writeFile(t, filepath.Join(dir, "sub", "big1.bin"), strings.Repeat("b", 10000))
	writeFile(t, filepath.Join(dir, "sub", "big2.bin"), strings.Repeat("b", 10000))
	return dir
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	writeFile(t, a, "same")
	writeFile(t, b, "same")
	writeFile(t, c, "different")

	stdout, _, err := runCmd(t, "compare", a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files are identical.")

	stdout, _, err = runCmd(t, "compare", a, c)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files are different.")

	_, _, err = runCmd(t, "compare", a, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestWrongArgumentCount(t *testing.T) {
	tests := [][]string{
		{"compare", "only-one"},
		{"scan"},
		{"report", "dir-only"},
		{"delete"},
		{"filter"},
		{},
	}

	for _, args := range tests {
		_, _, err := runCmd(t, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestScan_Human(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "scan", dir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Duplicate files found:")
	assert.Contains(t, stdout, filepath.Join(dir, "file1.txt"))
	assert.Contains(t, stdout, filepath.Join(dir, "file2.txt"))
	assert.NotContains(t, stdout, filepath.Join(dir, "file3.txt"))
	assert.Equal(t, 2, strings.Count(stdout, "🧬 Hash:"))
}

func TestScan_MaxFilter(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "scan", dir, "--max", "5000")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(stdout, "🧬 Hash:"))
	assert.NotContains(t, stdout, "big1.bin")
}

func TestScan_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "A")
	writeFile(t, filepath.Join(dir, "b"), "B")

	stdout, _, err := runCmd(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No duplicates found.")
}

func TestScan_JSON(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "scan", dir, "--format", "json")
	require.NoError(t, err)

	var report hashlaser.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), "stdout must be pure JSON:\n%s", stdout)
	assert.Len(t, report.Duplicates, 2)
}

func TestScan_Fdupes(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "scan", dir, "--format", "fdupes", "--ext", "txt")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "file1.txt"),
		filepath.Join(dir, "file2.txt"),
	}, lines)
}

func TestScan_InvalidArguments(t *testing.T) {
	dir := setupTree(t)

	_, _, err := runCmd(t, "scan", dir, "--regex", "(unclosed")
	assert.Error(t, err)

	_, _, err = runCmd(t, "scan", dir, "--min", "lots")
	assert.Error(t, err)

	_, _, err = runCmd(t, "scan", dir, "--format", "xml")
	assert.Error(t, err)

	_, _, err = runCmd(t, "scan", dir, "--symlinks", "sometimes")
	assert.Error(t, err)
}

func TestScan_Exclude(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "scan", dir, "--exclude", "^sub$")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, "🧬 Hash:"))
}

func TestReport(t *testing.T) {
	dir := setupTree(t)
	out := filepath.Join(t.TempDir(), "report.json")

	stdout, _, err := runCmd(t, "report", dir, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Report saved to")

	report, err := hashlaser.ReadJSONReport(out)
	require.NoError(t, err)
	assert.Len(t, report.Duplicates, 2)
	for _, group := range report.Duplicates {
		assert.Len(t, group.Files, 2)
	}
}

func TestReport_UnwritablePath(t *testing.T) {
	dir := setupTree(t)

	_, _, err := runCmd(t, "report", dir, filepath.Join(t.TempDir(), "missing", "report.json"))
	assert.Error(t, err)
}

func TestDelete_DryRun(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "delete", dir, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Would delete:")
	assert.Contains(t, stdout, "Dry run complete. No files were deleted.")
	for _, name := range []string{"file1.txt", "file2.txt", "file3.txt", "sub/big1.bin", "sub/big2.bin"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestDelete_KeepsOnePerGroup(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "delete", dir, "--keep", "lexical")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Duplicate files deleted successfully.")

	assert.FileExists(t, filepath.Join(dir, "file1.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "file2.txt"))
	assert.FileExists(t, filepath.Join(dir, "file3.txt"))
	assert.FileExists(t, filepath.Join(dir, "sub", "big1.bin"))
	assert.NoFileExists(t, filepath.Join(dir, "sub", "big2.bin"))

	stdout, _, err = runCmd(t, "delete", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No duplicates to delete.")
}

func TestDelete_InvalidKeep(t *testing.T) {
	dir := setupTree(t)

	_, _, err := runCmd(t, "delete", dir, "--keep", "newest")
	assert.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "file2.txt"))
}

func TestFilter_ListsMatchingFiles(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "filter", dir, "--ext", "txt")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Matching files:")
	assert.Contains(t, stdout, "(2 copies)")
	assert.Contains(t, stdout, filepath.Join(dir, "file3.txt"))
	assert.NotContains(t, stdout, "big1.bin")
}

func TestFilter_JSONListsAllGroups(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "filter", dir, "--ext", "txt", "--format", "json")
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(stdout), &raw), "stdout must be pure JSON:\n%s", stdout)
	assert.Contains(t, raw, "groups")
	assert.NotContains(t, raw, "duplicates")

	var listing matchReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &listing))
	require.Len(t, listing.Groups, 2)

	sizes := []int{len(listing.Groups[0].Files), len(listing.Groups[1].Files)}
	assert.ElementsMatch(t, []int{1, 2}, sizes)
}

func TestFilter_NoMatches(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "filter", dir, "--ext", "pdf")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No matching files found.")
}

func TestConfigInitAndUse(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "conf", "hashlaser.ini")

	_, _, err := runCmd(t, "config", "init", configPath)
	require.NoError(t, err)
	assert.FileExists(t, configPath)

	_, _, err = runCmd(t, "config", "init", configPath)
	assert.Error(t, err, "init must not overwrite without --force")

	_, _, err = runCmd(t, "config", "init", configPath, "--force")
	require.NoError(t, err)

	stdout, _, err := runCmd(t, "--config", configPath, "--set", "default:sha512", "--workers", "2", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# source: "+configPath)
	assert.Contains(t, stdout, "default = sha512")
	assert.Contains(t, stdout, "hash_workers = 2")
}

func TestConfig_FlagOverridesSet(t *testing.T) {
	stdout, _, err := runCmd(t, "--set", "default:sha1", "--hash", "sha512", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "default = sha512")
	assert.Contains(t, stdout, "(built-in defaults)")
}

func TestConfig_MissingFile(t *testing.T) {
	_, _, err := runCmd(t, "--config", filepath.Join(t.TempDir(), "nope.ini"), "config", "show")
	assert.Error(t, err)
}

func TestQuietSuppressesBanner(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := runCmd(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Intelligent File Deduplicator")

	stdout, _, err = runCmd(t, "-q", "scan", dir)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Intelligent File Deduplicator")
	assert.Contains(t, stdout, "Duplicate files found:")
}

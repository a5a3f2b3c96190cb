package tool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate"
)

func searchFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha\nbeta match here\ngamma\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("another match line\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hidden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "c.txt"), []byte("match inside hidden\n"), 0o644))
	return dir
}

func runSearch(t *testing.T, dir, args string) string {
	t.Helper()
	_, handler := NewSearchFilesTool(WithSearchPath(dir))
	out, err := handler(context.Background(), agentgate.ToolCall{ID: "t1", Name: "search_files", Arguments: args})
	require.NoError(t, err)
	return out
}

func TestSearchFilesFindsMatches(t *testing.T) {
	dir := searchFixture(t)
	out := runSearch(t, dir, `{"pattern":"match"}`)

	assert.Contains(t, out, "a.txt:2: beta match here")
	assert.Contains(t, out, "b.log:1: another match line")
	// Dot directories are not searched.
	assert.NotContains(t, out, "hidden")
}

func TestSearchFilesGlobFilter(t *testing.T) {
	dir := searchFixture(t)
	out := runSearch(t, dir, `{"pattern":"match","glob":"*.log"}`)

	assert.Contains(t, out, "b.log")
	assert.NotContains(t, out, "a.txt")
}

func TestSearchFilesNoMatches(t *testing.T) {
	dir := searchFixture(t)
	assert.Equal(t, "no matches", runSearch(t, dir, `{"pattern":"nonexistent"}`))
}

func TestSearchFilesInvalidPattern(t *testing.T) {
	dir := searchFixture(t)
	_, handler := NewSearchFilesTool(WithSearchPath(dir))
	_, err := handler(context.Background(), agentgate.ToolCall{ID: "t1", Name: "search_files", Arguments: `{"pattern":"("}`})
	require.Error(t, err)
}

func TestSearchFilesMaxResults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "many.txt"), []byte("hit\nhit\nhit\nhit\nhit\n"), 0o644))

	_, handler := NewSearchFilesTool(WithSearchPath(dir), WithMaxResults(2))
	out, err := handler(context.Background(), agentgate.ToolCall{ID: "t1", Name: "search_files", Arguments: `{"pattern":"hit"}`})
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validDoc = `
servers:
  insights:
    transport: sse
    address: https://insights.internal/mcp
    headers:
      X-User: ${metadata.userId}
      X-Static: fixed
    toolDefaults:
      query_metrics:
        limit: 10
        verbose: false
  search:
    transport: http
    address: https://search.internal/mcp
`

func TestLoader_Valid(t *testing.T) {
	l := NewLoader(writeDoc(t, validDoc))
	set := l.Load()

	require.Len(t, set, 2)

	insights := set["insights"]
	assert.Equal(t, agentgate.TransportSSE, insights.Transport)
	assert.Equal(t, "https://insights.internal/mcp", insights.Address)
	assert.Equal(t, "${metadata.userId}", insights.Headers["X-User"])
	assert.Equal(t, "fixed", insights.Headers["X-Static"])
	assert.Equal(t, 10, insights.ToolDefaults["query_metrics"]["limit"])
	assert.Equal(t, false, insights.ToolDefaults["query_metrics"]["verbose"])

	search := set["search"]
	assert.Equal(t, agentgate.TransportStreamableHTTP, search.Transport)
	assert.Empty(t, search.Headers)
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	set := l.Load()
	require.NotNil(t, set)
	assert.Empty(t, set)
}

func TestLoader_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "{{{"},
		{"missing servers section", "other: true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewLoader(writeDoc(t, tt.doc)).Load()
			require.NotNil(t, set)
			assert.Empty(t, set)
		})
	}
}

func TestLoader_SkipsInvalidEntries(t *testing.T) {
	doc := `
servers:
  good:
    transport: sse
    address: https://good.internal/mcp
  badtransport:
    transport: websocket
    address: https://bad.internal/mcp
  noaddress:
    transport: sse
  nesteddefault:
    transport: sse
    address: https://nested.internal/mcp
    toolDefaults:
      q:
        filter:
          nested: true
`
	set := NewLoader(writeDoc(t, doc)).Load()
	require.Len(t, set, 1)
	assert.Contains(t, set, "good")
}

func TestLoader_Memoizes(t *testing.T) {
	path := writeDoc(t, validDoc)
	l := NewLoader(path)

	first := l.Load()
	require.Len(t, first, 2)

	// Changing the file must not be observed: config is load-once.
	require.NoError(t, os.WriteFile(path, []byte("servers: {}"), 0o644))
	second := l.Load()
	assert.Len(t, second, 2)
}

func TestServerSet_CloneIsolation(t *testing.T) {
	set := NewLoader(writeDoc(t, validDoc)).Load()

	clone := set.Clone()
	clone["insights"].Headers["X-User"] = "u1"
	clone["insights"].ToolDefaults["query_metrics"]["limit"] = 99

	assert.Equal(t, "${metadata.userId}", set["insights"].Headers["X-User"])
	assert.Equal(t, 10, set["insights"].ToolDefaults["query_metrics"]["limit"])
}

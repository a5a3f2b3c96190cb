package agentgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerDescriptorClone(t *testing.T) {
	orig := ServerDescriptor{
		Transport: TransportSSE,
		Address:   "http://localhost:9000/sse",
		Headers:   map[string]string{"X-User": "${metadata.userId}"},
		ToolDefaults: map[string]map[string]any{
			"query_metrics": {"limit": 10},
		},
	}

	clone := orig.Clone()
	clone.Headers["X-User"] = "alice"
	clone.ToolDefaults["query_metrics"]["limit"] = 99

	assert.Equal(t, "${metadata.userId}", orig.Headers["X-User"])
	assert.Equal(t, 10, orig.ToolDefaults["query_metrics"]["limit"])
}

func TestServerSetClone(t *testing.T) {
	set := ServerSet{
		"insights": {
			Transport: TransportSSE,
			Address:   "http://localhost:9000/sse",
			Headers:   map[string]string{"Authorization": "Bearer ${metadata.token}"},
		},
	}

	clone := set.Clone()
	clone["insights"].Headers["Authorization"] = "Bearer abc"
	delete(clone, "insights")

	assert.Equal(t, "Bearer ${metadata.token}", set["insights"].Headers["Authorization"])
	assert.Len(t, set, 1)
}

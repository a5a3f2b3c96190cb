package agentgate

// TransportKind identifies how the gateway talks to an auxiliary tool server.
type TransportKind string

const (
	// TransportSSE is the HTTP + Server-Sent Events transport.
	TransportSSE TransportKind = "sse"

	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP TransportKind = "http"
)

// ServerDescriptor describes one auxiliary tool server. Descriptors are
// loaded once at process start and treated as immutable template data; the
// configurator derives a request-scoped copy before substituting header
// values, so concurrent requests never observe each other's metadata.
type ServerDescriptor struct {
	// Transport selects the connection protocol.
	Transport TransportKind `json:"transport"`

	// Address is the server endpoint.
	Address string `json:"address"`

	// Headers maps header name to a template string that may contain
	// ${metadata.*} placeholders.
	Headers map[string]string `json:"headers,omitempty"`

	// ToolDefaults maps tool name to default argument values, merged into
	// calls by the execution engine. Values are scalars only.
	ToolDefaults map[string]map[string]any `json:"toolDefaults,omitempty"`
}

// Clone returns an independent deep copy of the descriptor.
func (d ServerDescriptor) Clone() ServerDescriptor {
	out := ServerDescriptor{
		Transport: d.Transport,
		Address:   d.Address,
	}
	if d.Headers != nil {
		out.Headers = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			out.Headers[k] = v
		}
	}
	if d.ToolDefaults != nil {
		out.ToolDefaults = make(map[string]map[string]any, len(d.ToolDefaults))
		for tool, args := range d.ToolDefaults {
			copied := make(map[string]any, len(args))
			for k, v := range args {
				copied[k] = v
			}
			out.ToolDefaults[tool] = copied
		}
	}
	return out
}

// ServerSet maps server name to its descriptor.
type ServerSet map[string]ServerDescriptor

// Clone returns an independent deep copy of the set.
func (s ServerSet) Clone() ServerSet {
	out := make(ServerSet, len(s))
	for name, d := range s {
		out[name] = d.Clone()
	}
	return out
}

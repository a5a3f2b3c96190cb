package agentgate

import "strings"

// serverToolPrefix namespaces tools that belong to an auxiliary server.
// A qualified name looks like "mcp__insights__query_metrics".
const serverToolPrefix = "mcp__"

// ExecutionConfig is the ephemeral, per-request configuration consumed by
// the event relay. It is constructed at the start of one request, used once,
// and discarded: header values inside Servers are request-specific and must
// never be cached or shared across requests.
type ExecutionConfig struct {
	// Capabilities is the resolved tool allow-list: local tool names plus a
	// wildcard per configured auxiliary server.
	Capabilities []string

	// Servers is the request-scoped, template-substituted descriptor set.
	Servers ServerSet

	// ContinuationToken is carried from the request; empty means a fresh
	// execution context.
	ContinuationToken string
}

// QualifiedToolName returns the namespaced name of a tool hosted by an
// auxiliary server.
func QualifiedToolName(server, tool string) string {
	return serverToolPrefix + server + "__" + tool
}

// ServerCapability returns the wildcard capability covering every tool of
// the named auxiliary server.
func ServerCapability(server string) string {
	return serverToolPrefix + server + "__*"
}

// ParseServerTool splits a qualified tool name into its server and tool
// parts. It returns ok=false for local (unqualified) names.
func ParseServerTool(name string) (server, tool string, ok bool) {
	rest, found := strings.CutPrefix(name, serverToolPrefix)
	if !found {
		return "", "", false
	}
	server, tool, found = strings.Cut(rest, "__")
	if !found || server == "" {
		return "", "", false
	}
	return server, tool, true
}

// CapabilityAllows reports whether a tool name is covered by the allow-list.
// A capability either names a tool exactly or ends in "*", in which case it
// matches any tool sharing the preceding prefix.
func CapabilityAllows(capabilities []string, tool string) bool {
	for _, c := range capabilities {
		if c == tool {
			return true
		}
		if prefix, found := strings.CutSuffix(c, "*"); found && strings.HasPrefix(tool, prefix) {
			return true
		}
	}
	return false
}

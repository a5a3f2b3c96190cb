package gateway

import (
	"sort"

	"agentgate"
	"agentgate/template"
)

// ServerSource provides the process-wide auxiliary server set.
type ServerSource interface {
	Load() agentgate.ServerSet
}

// BuildConfig derives the execution configuration for one request.
//
// When the request carries no metadata the shared base set is referenced
// as-is. When metadata is present the base set is deep-copied first and
// every header value has its placeholders substituted against the request's
// metadata, so concurrent requests never observe each other's headers and
// the base set is never mutated.
//
// The capability list is the local tool names plus one wildcard per
// configured auxiliary server.
func BuildConfig(req agentgate.Request, base agentgate.ServerSet, localTools []string) *agentgate.ExecutionConfig {
	servers := base
	if len(req.Metadata) > 0 {
		servers = base.Clone()
		for name, desc := range servers {
			for key, value := range desc.Headers {
				desc.Headers[key] = template.Substitute(value, req.Metadata)
			}
			servers[name] = desc
		}
	}

	capabilities := make([]string, 0, len(localTools)+len(servers))
	capabilities = append(capabilities, localTools...)

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		capabilities = append(capabilities, agentgate.ServerCapability(name))
	}

	return &agentgate.ExecutionConfig{
		Capabilities:      capabilities,
		Servers:           servers,
		ContinuationToken: req.ContinuationToken,
	}
}

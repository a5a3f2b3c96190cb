// Package descriptor loads the declarative auxiliary tool-server document.
//
// The document is read once per process lifetime and the parsed result is
// memoized; the loader never re-reads the source even if the file changes.
// An absent document is a valid state (a gateway with zero auxiliary servers
// is legal), and a malformed one degrades to the same empty set instead of
// failing the request path.
package descriptor

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"agentgate"
)

// document is the on-disk shape of the server descriptor file.
type document struct {
	Servers map[string]serverEntry `yaml:"servers"`
}

type serverEntry struct {
	Transport    string                    `yaml:"transport"`
	Address      string                    `yaml:"address"`
	Headers      map[string]string         `yaml:"headers"`
	ToolDefaults map[string]map[string]any `yaml:"toolDefaults"`
}

// Loader reads the descriptor document on first use and memoizes the result.
// It is safe for concurrent use; every caller after the first observes the
// same immutable set.
type Loader struct {
	path   string
	logger *slog.Logger

	once sync.Once
	set  agentgate.ServerSet
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader for the document at path. Nothing is read until
// the first call to Load.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the memoized descriptor set, reading the document on the
// first call. It never returns nil and never fails: load problems are
// logged and degrade to an empty set.
func (l *Loader) Load() agentgate.ServerSet {
	l.once.Do(func() {
		l.set = l.read()
	})
	return l.set
}

func (l *Loader) read() agentgate.ServerSet {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Info("no server descriptor document, continuing without auxiliary servers", "path", l.path)
		} else {
			l.logger.Warn("failed to read server descriptor document", "path", l.path, "error", err)
		}
		return agentgate.ServerSet{}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		l.logger.Warn("malformed server descriptor document", "path", l.path, "error", err)
		return agentgate.ServerSet{}
	}
	if doc.Servers == nil {
		l.logger.Warn("server descriptor document has no servers section", "path", l.path)
		return agentgate.ServerSet{}
	}

	set := make(agentgate.ServerSet, len(doc.Servers))
	for name, entry := range doc.Servers {
		desc, err := entry.descriptor()
		if err != nil {
			l.logger.Warn("skipping invalid server descriptor", "server", name, "error", err)
			continue
		}
		set[name] = desc
	}
	l.logger.Info("loaded server descriptors", "path", l.path, "count", len(set))
	return set
}

func (e serverEntry) descriptor() (agentgate.ServerDescriptor, error) {
	var transport agentgate.TransportKind
	switch agentgate.TransportKind(e.Transport) {
	case agentgate.TransportSSE, agentgate.TransportStreamableHTTP:
		transport = agentgate.TransportKind(e.Transport)
	default:
		return agentgate.ServerDescriptor{}, fmt.Errorf("unknown transport %q", e.Transport)
	}
	if e.Address == "" {
		return agentgate.ServerDescriptor{}, fmt.Errorf("address is required")
	}
	for tool, args := range e.ToolDefaults {
		for arg, value := range args {
			if !scalar(value) {
				return agentgate.ServerDescriptor{}, fmt.Errorf("tool default %s.%s is not a scalar", tool, arg)
			}
		}
	}
	return agentgate.ServerDescriptor{
		Transport:    transport,
		Address:      e.Address,
		Headers:      e.Headers,
		ToolDefaults: e.ToolDefaults,
	}, nil
}

// scalar reports whether a tool default value is a primitive. Nested
// structures are not allowed in defaults.
func scalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return true
	default:
		return false
	}
}

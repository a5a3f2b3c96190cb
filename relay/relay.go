// Package relay forwards execution-engine events to the transport while
// recording tool activity. It never reorders, rewrites, drops, or injects
// events; its observable output is exactly the engine's output.
package relay

import (
	"context"
	"log/slog"
	"sort"

	"agentgate"
	"agentgate/engine"
)

// Relay drives an engine execution and passes its event stream through.
type Relay struct {
	engine engine.Engine
	logger *slog.Logger
}

// New creates a Relay over the given engine.
func New(eng engine.Engine, opts ...Option) *Relay {
	r := &Relay{
		engine: eng,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures the Relay.
type Option func(*Relay)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) { r.logger = l }
}

// Run invokes the engine exactly once and returns a channel carrying the
// engine's events in their original order. A synchronous engine error is
// returned directly; no channel is created and nothing was started.
//
// Tool invocations are logged as a side effect. For auxiliary-server tools
// the owning server and the names of its configured header keys are logged
// at most once per server per run. Header values never reach the log.
func (r *Relay) Run(ctx context.Context, req agentgate.Request, cfg *agentgate.ExecutionConfig) (<-chan agentgate.StreamEvent, error) {
	events, err := r.engine.Execute(ctx, engine.Request{
		Prompt:            req.Prompt,
		ContinuationToken: cfg.ContinuationToken,
		Capabilities:      cfg.Capabilities,
		Servers:           cfg.Servers,
	})
	if err != nil {
		return nil, err
	}

	logger := r.logger.With("conversation_id", req.ConversationID)
	out := make(chan agentgate.StreamEvent)
	go r.forward(ctx, logger, cfg, events, out)
	return out, nil
}

func (r *Relay) forward(ctx context.Context, logger *slog.Logger, cfg *agentgate.ExecutionConfig, in <-chan agentgate.StreamEvent, out chan<- agentgate.StreamEvent) {
	defer close(out)

	loggedServers := make(map[string]bool)
	for ev := range in {
		if ev.Kind == agentgate.EventToolInvocation && ev.ToolCall != nil {
			r.logInvocation(logger, cfg, loggedServers, ev.ToolCall.Name)
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			// Consumer is gone; the engine stops on the same ctx.
			return
		}
	}
}

func (r *Relay) logInvocation(logger *slog.Logger, cfg *agentgate.ExecutionConfig, loggedServers map[string]bool, name string) {
	logger.Info("tool invoked", "tool", name)

	server, _, ok := agentgate.ParseServerTool(name)
	if !ok || loggedServers[server] {
		return
	}
	loggedServers[server] = true

	desc, found := cfg.Servers[server]
	if !found {
		return
	}
	keys := make([]string, 0, len(desc.Headers))
	for k := range desc.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	logger.Info("auxiliary server in use", "server", server, "header_keys", keys)
}

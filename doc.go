// Package agentgate defines the shared types for the agent streaming
// gateway: the inbound request shape, the event stream vocabulary, the
// auxiliary tool-server descriptors, and the per-request execution
// configuration.
//
// The gateway turns a single HTTP request into a long-running, tool-using
// agent execution and re-exposes the execution's event stream to the caller
// over a persistent connection. The moving parts live in sub-packages:
//
//   - [agentgate/template]: resolves ${metadata.*} placeholders in header
//     templates against the caller-supplied metadata bag.
//   - [agentgate/descriptor]: loads the declarative tool-server document once
//     per process and memoizes it.
//   - [agentgate/relay]: drives an execution engine and passes its event
//     stream through unchanged.
//   - [agentgate/gateway]: the HTTP surface — request validation, execution
//     configuration, and SSE framing.
//   - [agentgate/engine]: the execution-engine boundary and the in-memory
//     continuation store; [agentgate/engine/anthropic] is the production
//     implementation built on the Anthropic SDK.
//
// # Basic Usage
//
// Wire a gateway in front of an engine and serve it:
//
//	eng := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"), anthropic.WithRegistry(registry))
//	loader := descriptor.NewLoader("servers.yaml")
//	h := gateway.NewHandler(relay.New(eng), loader, registry.Names())
//
//	mux := http.NewServeMux()
//	mux.Handle("/agent/stream", h)
//	mux.Handle("/health", gateway.HealthHandler())
//	http.ListenAndServe(":8000", mux)
package agentgate

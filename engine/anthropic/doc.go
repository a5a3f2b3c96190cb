// Package anthropic implements the execution engine on the Anthropic SDK.
//
// One execution is a streamed tool-use loop: the model's output chunks are
// emitted as partial-content events, tool calls are dispatched to the local
// registry or to the request's auxiliary MCP servers, and the loop runs
// until the model stops calling tools or the step bound is hit. The
// conversation history lives in the engine's session store so a later
// request can resume it via the session token stamped on every event.
package anthropic

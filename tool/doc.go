// Package tool provides the gateway's local capability registry and its
// fixed set of locally-available tools: read/search/list-style operations
// over a sandboxed workspace directory.
//
// Local tools are always offered to the execution engine under their bare
// names; tools hosted by auxiliary servers are namespaced separately (see
// agentgate.QualifiedToolName).
package tool

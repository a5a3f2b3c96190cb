package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate"
	"agentgate/engine"
	"agentgate/relay"
)

type staticSource struct {
	set agentgate.ServerSet
}

func (s staticSource) Load() agentgate.ServerSet { return s.set }

// scriptedEngine plays back a fixed event sequence.
type scriptedEngine struct {
	events  []agentgate.StreamEvent
	err     error
	lastReq engine.Request
}

func (s *scriptedEngine) Execute(ctx context.Context, req engine.Request) (<-chan agentgate.StreamEvent, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan agentgate.StreamEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

type frame struct {
	typ  string
	data map[string]any
}

func parseFrames(t *testing.T, body string) []frame {
	t.Helper()
	var frames []frame
	for _, chunk := range strings.Split(strings.TrimSpace(body), "\n\n") {
		lines := strings.SplitN(chunk, "\n", 2)
		require.Len(t, lines, 2, "malformed frame: %q", chunk)
		f := frame{typ: strings.TrimPrefix(lines[0], "event: ")}
		data := strings.TrimPrefix(lines[1], "data: ")
		require.NoError(t, json.Unmarshal([]byte(data), &f.data))
		frames = append(frames, f)
	}
	return frames
}

func frameTypes(frames []frame) []string {
	types := make([]string, len(frames))
	for i, f := range frames {
		types[i] = f.typ
	}
	return types
}

func newTestHandler(eng engine.Engine, set agentgate.ServerSet, localTools []string) *Handler {
	return NewHandler(relay.New(eng), staticSource{set: set}, localTools)
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/agent/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStreamSuccess(t *testing.T) {
	eng := &scriptedEngine{events: []agentgate.StreamEvent{
		{Kind: agentgate.EventLifecycleStart, SessionToken: "s1"},
		{Kind: agentgate.EventPartialContent, SessionToken: "s1", Delta: "pong"},
		{Kind: agentgate.EventTerminalResult, SessionToken: "s1", Result: &agentgate.Result{
			Subtype: agentgate.ResultSuccess,
			Content: "pong",
			Turns:   1,
		}},
	}}
	rec := post(newTestHandler(eng, nil, nil), `{"conversationId":"c1","prompt":"ping"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	frames := parseFrames(t, rec.Body.String())
	require.Equal(t, []string{"start", "message", "message", "message", "result", "complete"}, frameTypes(frames))

	assert.Equal(t, "c1", frames[0].data["conversationId"])
	assert.Equal(t, false, frames[0].data["resuming"])
	assert.Equal(t, "success", frames[4].data["subtype"])
	assert.Equal(t, "pong", frames[4].data["result"])
}

func TestStreamPreservesEventOrder(t *testing.T) {
	eng := &scriptedEngine{events: []agentgate.StreamEvent{
		{Kind: agentgate.EventLifecycleStart},
		{Kind: agentgate.EventToolInvocation, ToolCall: &agentgate.ToolCall{ID: "t1", Name: "read_file"}},
		{Kind: agentgate.EventToolResult, ToolResult: &agentgate.ToolResult{ToolCallID: "t1", Content: "data"}},
		{Kind: agentgate.EventPartialContent, Delta: "done"},
		{Kind: agentgate.EventTerminalResult, Result: &agentgate.Result{Subtype: agentgate.ResultSuccess, Content: "done"}},
	}}
	rec := post(newTestHandler(eng, nil, nil), `{"conversationId":"c1","prompt":"go"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	frames := parseFrames(t, rec.Body.String())
	var kinds []string
	for _, f := range frames {
		if f.typ != "message" {
			continue
		}
		ev := f.data["event"].(map[string]any)
		kinds = append(kinds, ev["kind"].(string))
	}
	assert.Equal(t, []string{"lifecycle_start", "tool_invocation", "tool_result", "partial_content", "terminal_result"}, kinds)
	// The result frame follows the terminal message frame.
	assert.Equal(t, "result", frames[len(frames)-2].typ)
	assert.Equal(t, "complete", frames[len(frames)-1].typ)
}

func TestValidationRejectsBeforeStreaming(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"conversationId":"c1"}`},
		{"missing conversation id", `{"prompt":"hi"}`},
		{"malformed json", `{"conversationId":`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestHandler(&scriptedEngine{}, nil, nil), tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
			assert.NotContains(t, rec.Body.String(), "event:")
		})
	}
}

func TestSynchronousEngineErrorIsHTTPError(t *testing.T) {
	eng := &scriptedEngine{err: errors.New("engine offline")}
	rec := post(newTestHandler(eng, nil, nil), `{"conversationId":"c1","prompt":"hi"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload["error"], "engine offline")
}

func TestEngineErrorAfterStreamingIsInBand(t *testing.T) {
	eng := &scriptedEngine{events: []agentgate.StreamEvent{
		{Kind: agentgate.EventLifecycleStart},
		{Kind: agentgate.EventLifecycleError, ErrorMessage: "model turn failed", Result: &agentgate.Result{
			Subtype: agentgate.ResultError,
			Errors:  []string{"model turn failed"},
		}},
	}}
	rec := post(newTestHandler(eng, nil, nil), `{"conversationId":"c1","prompt":"hi"}`)

	// The stream opened, so failure is reported in-band, not as a status.
	require.Equal(t, http.StatusOK, rec.Code)
	frames := parseFrames(t, rec.Body.String())
	require.Equal(t, []string{"start", "message", "message", "result", "complete"}, frameTypes(frames))
	assert.Equal(t, "error", frames[3].data["subtype"])
	assert.Equal(t, []any{"model turn failed"}, frames[3].data["errors"])
	assert.Nil(t, frames[3].data["result"])
}

func TestStreamEndingWithoutTerminalEmitsErrorFrame(t *testing.T) {
	eng := &scriptedEngine{events: []agentgate.StreamEvent{
		{Kind: agentgate.EventLifecycleStart},
		{Kind: agentgate.EventPartialContent, Delta: "par"},
	}}
	rec := post(newTestHandler(eng, nil, nil), `{"conversationId":"c1","prompt":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	frames := parseFrames(t, rec.Body.String())
	require.Equal(t, []string{"start", "message", "message", "error"}, frameTypes(frames))
	assert.NotEmpty(t, frames[3].data["error"])
}

func TestResumingFlag(t *testing.T) {
	terminal := agentgate.StreamEvent{Kind: agentgate.EventTerminalResult, Result: &agentgate.Result{Subtype: agentgate.ResultSuccess}}

	rec := post(newTestHandler(&scriptedEngine{events: []agentgate.StreamEvent{terminal}}, nil, nil),
		`{"conversationId":"c1","prompt":"hi","continuationToken":"tok-1"}`)
	frames := parseFrames(t, rec.Body.String())
	assert.Equal(t, true, frames[0].data["resuming"])

	rec = post(newTestHandler(&scriptedEngine{events: []agentgate.StreamEvent{terminal}}, nil, nil),
		`{"conversationId":"c1","prompt":"hi"}`)
	frames = parseFrames(t, rec.Body.String())
	assert.Equal(t, false, frames[0].data["resuming"])
}

func TestMetadataReachesEngineWithSubstitutedHeaders(t *testing.T) {
	set := agentgate.ServerSet{
		"insights": {
			Transport: agentgate.TransportSSE,
			Address:   "http://localhost:9000/sse",
			Headers:   map[string]string{"X-User": "${metadata.userId}"},
		},
	}
	eng := &scriptedEngine{events: []agentgate.StreamEvent{
		{Kind: agentgate.EventTerminalResult, Result: &agentgate.Result{Subtype: agentgate.ResultSuccess}},
	}}
	rec := post(newTestHandler(eng, set, []string{"read_file"}),
		`{"conversationId":"c1","prompt":"hi","metadata":{"userId":"u-42"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "u-42", eng.lastReq.Servers["insights"].Headers["X-User"])
	assert.Equal(t, []string{"read_file", "mcp__insights__*"}, eng.lastReq.Capabilities)
	// The shared set keeps its template.
	assert.Equal(t, "${metadata.userId}", set["insights"].Headers["X-User"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&scriptedEngine{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/agent/stream", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "agentgate", payload["service"])
}

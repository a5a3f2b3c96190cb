package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agentgate"
)

// Frame type tags in the stream vocabulary.
const (
	frameStart    = "start"
	frameMessage  = "message"
	frameResult   = "result"
	frameComplete = "complete"
	frameError    = "error"
)

type startFrame struct {
	ConversationID string    `json:"conversationId"`
	Resuming       bool      `json:"resuming"`
	Timestamp      time.Time `json:"timestamp"`
}

type messageFrame struct {
	Event      agentgate.StreamEvent `json:"event"`
	ReceivedAt time.Time             `json:"receivedAt"`
}

type resultFrame struct {
	Subtype    agentgate.ResultSubtype `json:"subtype"`
	DurationMS int64                   `json:"durationMs"`
	Turns      int                     `json:"turns"`
	Usage      agentgate.Usage         `json:"usage"`

	// Result is set only on success; Errors only on non-success.
	Result string   `json:"result,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

type completeFrame struct {
	Timestamp time.Time `json:"timestamp"`
}

type errorFrame struct {
	Error string `json:"error"`
}

func newResultFrame(res *agentgate.Result) resultFrame {
	frame := resultFrame{
		Subtype:    res.Subtype,
		DurationMS: res.DurationMS,
		Turns:      res.Turns,
		Usage:      res.Usage,
	}
	if res.Subtype == agentgate.ResultSuccess {
		frame.Result = res.Content
	} else {
		frame.Errors = res.Errors
	}
	return frame
}

// writeFrame emits one self-delimited SSE frame and flushes it so the
// caller sees each frame as soon as it exists.
func writeFrame(w http.ResponseWriter, flusher http.Flusher, frameType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", frameType, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frameType, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// Package gateway is the HTTP surface of the agent streaming gateway. It
// validates inbound requests, derives a per-request execution configuration
// from the shared server set, and streams relayed engine events as framed
// server-sent events.
package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"agentgate"
	"agentgate/internal/metrics"
	"agentgate/relay"
)

// Handler serves POST /agent/stream.
//
// The request moves through four states: idle, validating, streaming,
// closed. Validation failures and pre-stream engine failures produce a JSON
// error status because no bytes have been written yet. Once the start frame
// is on the wire the status line is fixed, and every later failure is
// reported in-band as an error frame.
type Handler struct {
	relay   *relay.Relay
	source  ServerSource
	local   []string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler creates the streaming handler. localTools is the fixed list of
// built-in tool names granted to every request.
func NewHandler(r *relay.Relay, source ServerSource, localTools []string, opts ...HandlerOption) *Handler {
	h := &Handler{
		relay:  r,
		source: source,
		local:  localTools,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.reject(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req agentgate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.reject(w, http.StatusBadRequest, err.Error())
		return
	}

	log := h.logger.With("conversation_id", req.ConversationID, "resuming", req.Resuming())

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		h.reject(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	cfg := BuildConfig(req, h.source.Load(), h.local)
	log.Debug("request validated", "capabilities", len(cfg.Capabilities), "servers", len(cfg.Servers))

	ctx := r.Context()
	events, err := h.relay.Run(ctx, req, cfg)
	if err != nil {
		// Nothing streamed yet, so a status line is still legal.
		log.Warn("execution rejected", "error", err)
		status := http.StatusBadGateway
		if agentgate.TypeOf(err) == agentgate.ErrorValidation {
			status = http.StatusBadRequest
		}
		h.reject(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	start := time.Now()
	log.Info("stream opened")
	if h.metrics != nil {
		h.metrics.ActiveStreams.Inc()
		defer h.metrics.ActiveStreams.Dec()
		defer func() {
			h.metrics.StreamDuration.Observe(time.Since(start).Seconds())
		}()
	}

	if err := writeFrame(w, flusher, frameStart, startFrame{
		ConversationID: req.ConversationID,
		Resuming:       req.Resuming(),
		Timestamp:      start,
	}); err != nil {
		log.Warn("client gone before start frame", "error", err)
		h.count(metrics.OutcomeFailed)
		return
	}

	sawTerminal := false
	for ev := range events {
		if h.metrics != nil {
			h.metrics.EventsRelayed.WithLabelValues(string(ev.Kind)).Inc()
		}
		if err := writeFrame(w, flusher, frameMessage, messageFrame{
			Event:      ev,
			ReceivedAt: time.Now(),
		}); err != nil {
			log.Info("client disconnected", "error", err)
			h.count(metrics.OutcomeFailed)
			return
		}
		if ev.Terminal() && ev.Result != nil {
			if err := writeFrame(w, flusher, frameResult, newResultFrame(ev.Result)); err != nil {
				log.Info("client disconnected", "error", err)
				h.count(metrics.OutcomeFailed)
				return
			}
			sawTerminal = true
		}
	}

	if !sawTerminal {
		// The engine's stream ended without a terminal event. The status
		// line is already written, so the failure goes in-band.
		log.Warn("stream ended without terminal event")
		writeFrame(w, flusher, frameError, errorFrame{Error: "execution ended unexpectedly"})
		h.count(metrics.OutcomeFailed)
		return
	}

	writeFrame(w, flusher, frameComplete, completeFrame{Timestamp: time.Now()})
	log.Info("stream closed", "duration", time.Since(start))
	h.count(metrics.OutcomeCompleted)
}

// reject writes a JSON error status. Only legal before streaming begins.
func (h *Handler) reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
	h.count(metrics.OutcomeRejected)
}

func (h *Handler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.Requests.WithLabelValues(outcome).Inc()
	}
}

package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux wires the gateway's routes onto a fresh ServeMux. The metrics
// endpoint is registered only when reg is non-nil.
func NewMux(h *Handler, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/agent/stream", h)
	mux.Handle("/health", HealthHandler())
	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	return mux
}

package handler

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/failover"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/metrics"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
)

type FailoverHandler struct {
	logger     *slog.Logger
	controller *failover.Controller
	origins    []origin.Origin
	policy     origin.Policy
	collector  *metrics.Collector
}

func NewFailoverHandler(
	logger *slog.Logger,
	controller *failover.Controller,
	origins []origin.Origin,
	policy origin.Policy,
	collector *metrics.Collector,
) *FailoverHandler {
	return &FailoverHandler{
		logger:     logger,
		controller: controller,
		origins:    origins,
		policy:     policy,
		collector:  collector,
	}
}

func (h *FailoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := extractClientIP(r)

	h.logger.Info("Received request",
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("proto", r.Proto),
		slog.String("host", r.Host),
		slog.String("user_agent", r.UserAgent()))

	h.collector.Emit(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
	})

	// Buffer the body once so a failed attempt does not consume it; every
	// origin gets a fresh replay.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("Failed to read request body",
			slog.String("client", clientIP),
			slog.Any("err", err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	pool := origin.NewPool(h.origins, h.policy)

	outcome, err := h.controller.Route(r.Context(), pool, r, body)
	if err != nil {
		if errors.Is(err, origin.ErrPoolExhausted) {
			h.logger.Warn("No origin could serve request",
				slog.String("client", clientIP),
				slog.String("path", r.URL.Path),
				slog.Int("origins", len(h.origins)))

			h.collector.Emit(metrics.MetricEvent{
				Type:      metrics.EventPoolExhausted,
				Timestamp: time.Now(),
			})
		} else {
			// The client went away; nothing useful can be written back.
			h.logger.Info("Abandoned request mid-failover",
				slog.String("client", clientIP),
				slog.String("path", r.URL.Path),
				slog.Any("err", err))
		}

		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	defer outcome.Close()

	copyHeader(w.Header(), outcome.Response.Header)
	w.WriteHeader(outcome.Response.StatusCode)

	if _, err := io.Copy(w, outcome.Response.Body); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.Error("Failed to stream origin response",
			slog.String("origin", outcome.Origin.Host),
			slog.Any("err", err))
	}
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

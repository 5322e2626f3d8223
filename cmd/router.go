package main

import (
	"net/http"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/handler"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/metrics"
)

func setupRouter(failoverHandler *handler.FailoverHandler, collector *metrics.Collector, policy string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", failoverHandler.ServeHTTP)
	mux.HandleFunc("/metrics", collector.Handler(policy))

	return mux
}

package main

import (
	"context"
	"net/http"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serveMetrics starts a best-effort /metrics HTTP server for the
// lifetime of one dpelim invocation and returns a func to shut it down.
// The returned stop func calls http.Server.Shutdown, which closes the
// listener and waits for any in-flight scrape to finish.
func serveMetrics(addr string, reg prometheus.Gatherer, logger hclog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		_ = server.Shutdown(context.Background())
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	errCatalogEmpty        = errors.New("restaurant catalog is empty")
	errDatabaseUnavailable = errors.New("DB ping failed")
)

// newMonitoringHandler serves /healthz, backed by ready, and /metrics from reg.
func newMonitoringHandler(
	log *slog.Logger,
	reg *prometheus.Registry,
	ready func(ctx context.Context) error,
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		log.DebugContext(ctx, "Performing health checks...")

		status, body := http.StatusOK, "OK"
		if err := ready(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, err.Error()
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

// newMonitoringServer builds the HTTP server exposing health and metrics endpoints.
func newMonitoringServer(application *app) *http.Server {
	readTimeout := 5
	writeTimeout := 10

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", application.cfg.HealthPort),
		Handler:      newMonitoringHandler(application.log, application.registry, application.ready),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
}

// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the API.

Collectors:

  - vidora_auth_events_total{operation,outcome}: session lifecycle outcomes.
  - vidora_http_request_duration_seconds{method,route,status}: request latency.

Every [Recorder] owns its registry, so tests can build isolated instances.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/vidora/internal/platform/middleware"
)

const namespace = "vidora"

// Recorder groups the collectors registered for one process.
type Recorder struct {
	registry     *prometheus.Registry
	authEvents   *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New builds a Recorder with a fresh registry including Go runtime collectors.
func New() *Recorder {
	registry := prometheus.NewRegistry()

	recorder := &Recorder{
		registry: registry,
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Session lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		recorder.authEvents,
		recorder.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return recorder
}

// AuthEvent counts one lifecycle operation (login, refresh, logout, register)
// with its outcome label (success, invalid_credentials, rejected, ...).
func (r *Recorder) AuthEvent(operation, outcome string) {
	r.authEvents.WithLabelValues(operation, outcome).Inc()
}

// ObserveRequest records one finished request.
func (r *Recorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for additional collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// HTTPMiddleware times every request and labels it with the chi route
// template, so path parameters never explode label cardinality.
func (r *Recorder) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		recorder := middleware.NewStatusRecorder(writer)
		start := time.Now()

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeCtx := chi.RouteContext(request.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		r.ObserveRequest(request.Method, route, recorder.Status, time.Since(start))
	})
}

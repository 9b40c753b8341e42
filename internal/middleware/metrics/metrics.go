// Package metrics exposes the service's Prometheus instrumentation: the HTTP
// request middleware plus counters and gauges for the provisioning domain
// itself (upstream step outcomes, live session and batch registries).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/accmint-dev/accmint/internal/domain"
)

const namespace = "accmint"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being processed",
		},
	)

	upstreamSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "steps_total",
			Help:      "Account-service protocol steps, by step and outcome",
		},
		[]string{"step", "outcome"},
	)
)

// Middleware records request count, latency and in-flight gauge per route.
// Labels use chi's route pattern, not the raw path, to keep cardinality
// bounded ({batch} instead of every batch id).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveStep counts one upstream protocol exchange.
func ObserveStep(step string, status domain.StepStatus) {
	upstreamSteps.WithLabelValues(step, outcomeLabel(status)).Inc()
}

func outcomeLabel(status domain.StepStatus) string {
	switch status {
	case domain.StatusOk:
		return "ok"
	case domain.StatusRejected:
		return "rejected"
	default:
		return "transport_error"
	}
}

// RegisterRegistrySizes exposes the live entry counts of the session and
// batch registries. Call once at startup.
func RegisterRegistrySizes(pendingSessions, activeBatches func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_sessions",
		Help:      "Single-shot sessions awaiting a verification code",
	}, func() float64 { return float64(pendingSessions()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_batches",
		Help:      "Batches not yet completed or expired",
	}, func() float64 { return float64(activeBatches()) })
}

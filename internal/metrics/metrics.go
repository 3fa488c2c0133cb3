// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Rrens/workspace-insights/internal/domain"
)

const namespace = "workspace_insights"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	collaboratorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_calls_total",
			Help:      "Calls to external collaborators, by outcome.",
		},
		[]string{"collaborator", "outcome"},
	)

	suggestionsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_generated_total",
			Help:      "Suggestions written by regeneration.",
		},
	)
)

// ObserveRequest records one served HTTP request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveCollaborator records the outcome of one collaborator call
func ObserveCollaborator(collaborator string, err error) {
	collaboratorCallsTotal.WithLabelValues(collaborator, Outcome(err)).Inc()
}

// Outcome labels an error for collaborator metrics
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *domain.CollaboratorError
	if errors.As(err, &ce) && ce.Code != "" {
		return ce.Code
	}
	return domain.CodeUpstreamError
}

// SuggestionsGenerated adds n regenerated suggestions
func SuggestionsGenerated(n int) {
	suggestionsGeneratedTotal.Add(float64(n))
}

package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/brensch/vacuum/search")

var (
	searchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vacuum_search_runs_total",
		Help: "Searches run, by outcome (solved, unsolvable, canceled, limit).",
	}, []string{"outcome"})

	statesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacuum_search_states_generated_total",
		Help: "States constructed by the search engine.",
	})

	expansions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacuum_search_expansions_total",
		Help: "Frontier entries popped by the search engine.",
	})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vacuum_search_duration_seconds",
		Help:    "Wall time of a single search.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"heuristic"})
)

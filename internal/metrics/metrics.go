package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskcsv_files_accepted_total",
			Help: "CSV files that passed validation and parsing",
		},
	)

	FilesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcsv_files_rejected_total",
			Help: "CSV files rejected before analysis",
		},
		[]string{"error_code"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcsv_analyses_total",
			Help: "Scoring round trips by engine and outcome",
		},
		[]string{"engine", "outcome"},
	)

	RowsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcsv_rows_scored_total",
			Help: "Rows sent for scoring",
		},
		[]string{"engine"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "riskcsv_scoring_duration_seconds",
			Help:    "Duration of scoring round trips in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 2.5, 5, 10, 30, 60},
		},
		[]string{"engine"},
	)
)

// Outcome label values for AnalysesTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// WriteFile dumps the default registry in text exposition format, for the
// node exporter textfile collector.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

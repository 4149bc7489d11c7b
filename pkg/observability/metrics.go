package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricQueriesTotal  = "filterphrase.queries.total"
	metricQueryDuration = "filterphrase.query.duration.seconds"
	metricQueryResults  = "filterphrase.query.results"

	attrStatus = "status"
)

// Ranking a project's file list takes well under a second; the upper buckets
// exist for very large monorepos.
var durationBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// QueryMetrics holds the instruments recorded for every filter query.
type QueryMetrics struct {
	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram
	queryResults  metric.Int64Histogram
}

// NewQueryMetrics creates query instruments from the given meter.
func NewQueryMetrics(mt metric.Meter) (*QueryMetrics, error) {
	total, err := mt.Int64Counter(metricQueriesTotal,
		metric.WithDescription("Total number of filter queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueriesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricQueryDuration,
		metric.WithDescription("Filter query duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueryDuration, err)
	}

	results, err := mt.Int64Histogram(metricQueryResults,
		metric.WithDescription("Number of ranked results per query"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueryResults, err)
	}

	return &QueryMetrics{
		queriesTotal:  total,
		queryDuration: duration,
		queryResults:  results,
	}, nil
}

// RecordQuery records one completed query.
func (qm *QueryMetrics) RecordQuery(ctx context.Context, status string, results int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	qm.queriesTotal.Add(ctx, 1, attrs)
	qm.queryDuration.Record(ctx, duration.Seconds(), attrs)
	qm.queryResults.Record(ctx, int64(results), attrs)
}

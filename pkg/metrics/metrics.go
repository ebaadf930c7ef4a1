// Package metrics reports events, metrics and traces to New Relic. Every
// function is a no-op when ctx carries no application.
package metrics

import (
	"context"
	"time"
)

// RecordEvent records a custom event with a set of attributes.
func RecordEvent(ctx context.Context, eventName string, attributes map[string]interface{}) {
	if app := fromContext(ctx); app != nil {
		app.RecordCustomEvent(eventName, attributes)
	}
}

// RecordCount records a count metric.
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if app := fromContext(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds.
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if app := fromContext(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}

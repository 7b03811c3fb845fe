package metrics

import "time"

// ExprMetrics provides observability for the expression pipeline's parse,
// build, and eval stages. Implementations are optional - pass nil to disable
// metrics collection with zero overhead.
type ExprMetrics interface {
	// RecordStage records a completed pipeline stage ("parse", "build", "eval").
	RecordStage(stage string, duration time.Duration, errorCode string)
}

var newPrometheusExprMetrics func() ExprMetrics

// RegisterExprMetricsConstructor registers the Prometheus ExprMetrics
// constructor. Called from pkg/metrics/prometheus/expr.go's init.
func RegisterExprMetricsConstructor(constructor func() ExprMetrics) {
	newPrometheusExprMetrics = constructor
}

// NewExprMetrics creates a Prometheus-backed ExprMetrics instance, or nil if
// metrics are not enabled.
func NewExprMetrics() ExprMetrics {
	if !IsEnabled() || newPrometheusExprMetrics == nil {
		return nil
	}
	return newPrometheusExprMetrics()
}

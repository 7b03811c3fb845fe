package metrics

import "time"

// MemMetrics provides observability for MemCore remote-memory reads.
// Implementations are optional - pass nil to disable metrics collection with
// zero overhead.
type MemMetrics interface {
	// RecordRead records a completed remote memory read.
	RecordRead(target string, bytes uint32, duration time.Duration, errorCode string)
}

var newPrometheusMemMetrics func() MemMetrics

// RegisterMemMetricsConstructor registers the Prometheus MemMetrics
// constructor. Called from pkg/metrics/prometheus/mem.go's init.
func RegisterMemMetricsConstructor(constructor func() MemMetrics) {
	newPrometheusMemMetrics = constructor
}

// NewMemMetrics creates a Prometheus-backed MemMetrics instance, or nil if
// metrics are not enabled.
func NewMemMetrics() MemMetrics {
	if !IsEnabled() || newPrometheusMemMetrics == nil {
		return nil
	}
	return newPrometheusMemMetrics()
}

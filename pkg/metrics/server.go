package metrics

import "time"

// ServerMetrics provides observability for MessageServer connection and
// request handling. Implementations are optional - pass nil to disable
// metrics collection with zero overhead.
type ServerMetrics interface {
	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int)

	// SetQueueDepth records the current depth of the inbound request queue.
	SetQueueDepth(depth int)

	// RecordRequest records a completed request with its rpcID and outcome.
	RecordRequest(rpcID uint32, duration time.Duration, errorCode string)

	// RecordFrameBytes records the payload length of a received frame.
	RecordFrameBytes(bytes uint32)
}

// newPrometheusServerMetrics is set by pkg/metrics/prometheus/server.go during
// package initialization, avoiding an import cycle between metrics and
// metrics/prometheus.
var newPrometheusServerMetrics func() ServerMetrics

// RegisterServerMetricsConstructor registers the Prometheus ServerMetrics
// constructor. Called from pkg/metrics/prometheus/server.go's init.
func RegisterServerMetricsConstructor(constructor func() ServerMetrics) {
	newPrometheusServerMetrics = constructor
}

// NewServerMetrics creates a Prometheus-backed ServerMetrics instance, or nil
// if metrics are not enabled.
func NewServerMetrics() ServerMetrics {
	if !IsEnabled() || newPrometheusServerMetrics == nil {
		return nil
	}
	return newPrometheusServerMetrics()
}

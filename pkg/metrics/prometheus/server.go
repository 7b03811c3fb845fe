package prometheus

import (
	"time"

	"github.com/atfkit/atf/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterServerMetricsConstructor(newServerMetrics)
}

type serverMetrics struct {
	connectionsAccepted *prometheus.CounterVec
	connectionsClosed   *prometheus.CounterVec
	activeConnections   prometheus.Gauge
	queueDepth          prometheus.Gauge
	requestsTotal       *prometheus.CounterVec
	requestDuration     prometheus.Histogram
	frameBytes          prometheus.Histogram
}

func newServerMetrics() metrics.ServerMetrics {
	reg := metrics.GetRegistry()

	return &serverMetrics{
		connectionsAccepted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_server_connections_accepted_total",
				Help: "Total number of TCP connections accepted by the MessageServer",
			},
			[]string{"status"},
		),
		connectionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_server_connections_closed_total",
				Help: "Total number of TCP connections closed by the MessageServer",
			},
			[]string{"status"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "atf_server_active_connections",
				Help: "Current number of open MessageServer connections",
			},
		),
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "atf_server_queue_depth",
				Help: "Current depth of the inbound request queue",
			},
		),
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_server_requests_total",
				Help: "Total number of dispatched requests by rpc ID and error code",
			},
			[]string{"rpc_id", "error_code"},
		),
		requestDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "atf_server_request_duration_milliseconds",
				Help:    "Duration of request dispatch in milliseconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
			},
		),
		frameBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "atf_server_frame_bytes",
				Help:    "Distribution of received frame payload sizes in bytes",
				Buckets: []float64{16, 64, 256, 1024, 4096, 16384, 65536},
			},
		),
	}
}

func (m *serverMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.WithLabelValues("ok").Inc()
}

func (m *serverMetrics) RecordConnectionClosed() {
	m.connectionsClosed.WithLabelValues("ok").Inc()
}

func (m *serverMetrics) SetActiveConnections(count int) {
	m.activeConnections.Set(float64(count))
}

func (m *serverMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *serverMetrics) RecordRequest(rpcID uint32, duration time.Duration, errorCode string) {
	label := errorCode
	if label == "" {
		label = "ok"
	}
	m.requestsTotal.WithLabelValues(rpcIDLabel(rpcID), label).Inc()
	m.requestDuration.Observe(duration.Seconds() * 1000)
}

func (m *serverMetrics) RecordFrameBytes(bytes uint32) {
	m.frameBytes.Observe(float64(bytes))
}

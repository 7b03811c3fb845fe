package prometheus

import (
	"time"

	"github.com/atfkit/atf/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterMemMetricsConstructor(newMemMetrics)
}

type memMetrics struct {
	readTotal    *prometheus.CounterVec
	readDuration *prometheus.HistogramVec
	readBytes    *prometheus.HistogramVec
}

func newMemMetrics() metrics.MemMetrics {
	reg := metrics.GetRegistry()

	return &memMetrics{
		readTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_mem_read_total",
				Help: "Total number of remote memory reads by target process and status",
			},
			[]string{"target", "error_code"},
		),
		readDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atf_mem_read_duration_milliseconds",
				Help:    "Duration of remote memory reads in milliseconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
			},
			[]string{"target"},
		),
		readBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atf_mem_read_bytes",
				Help:    "Distribution of remote memory read sizes in bytes",
				Buckets: []float64{1, 2, 4, 8, 16, 64, 256, 1024, 4096},
			},
			[]string{"target"},
		),
	}
}

func (m *memMetrics) RecordRead(target string, bytes uint32, duration time.Duration, errorCode string) {
	label := errorCode
	if label == "" {
		label = "ok"
	}
	m.readTotal.WithLabelValues(target, label).Inc()
	m.readDuration.WithLabelValues(target).Observe(duration.Seconds() * 1000)
	m.readBytes.WithLabelValues(target).Observe(float64(bytes))
}

package prometheus

import (
	"time"

	"github.com/atfkit/atf/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterHookMetricsConstructor(newHookMetrics)
}

type hookMetrics struct {
	attachTotal      *prometheus.CounterVec
	attachDuration   *prometheus.HistogramVec
	detachTotal      *prometheus.CounterVec
	detachAllRemoved prometheus.Histogram
	installTotal     *prometheus.CounterVec
	installDuration  prometheus.Histogram
	handlerCount     *prometheus.GaugeVec
}

func newHookMetrics() metrics.HookMetrics {
	reg := metrics.GetRegistry()

	return &hookMetrics{
		attachTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_hook_attach_total",
				Help: "Total number of handler attach attempts by mode and status",
			},
			[]string{"mode", "error_code"},
		),
		attachDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atf_hook_attach_duration_milliseconds",
				Help:    "Duration of handler attach operations in milliseconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"mode"},
		),
		detachTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_hook_detach_total",
				Help: "Total number of handler detach attempts by status",
			},
			[]string{"error_code"},
		),
		detachAllRemoved: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "atf_hook_detach_all_removed",
				Help:    "Distribution of handler counts removed by DetachAll sweeps",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		installTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_hook_install_total",
				Help: "Total number of detour installations by status",
			},
			[]string{"error_code"},
		),
		installDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "atf_hook_install_duration_milliseconds",
				Help:    "Duration of detour installation in milliseconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),
		handlerCount: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "atf_hook_handler_count",
				Help: "Current number of handlers attached per func ID",
			},
			[]string{"func_id"},
		),
	}
}

func (m *hookMetrics) RecordAttach(mode string, duration time.Duration, errorCode string) {
	label := errorCode
	if label == "" {
		label = "ok"
	}
	m.attachTotal.WithLabelValues(mode, label).Inc()
	m.attachDuration.WithLabelValues(mode).Observe(duration.Seconds() * 1000)
}

func (m *hookMetrics) RecordDetach(errorCode string) {
	label := errorCode
	if label == "" {
		label = "ok"
	}
	m.detachTotal.WithLabelValues(label).Inc()
}

func (m *hookMetrics) RecordDetachAll(removed int) {
	m.detachAllRemoved.Observe(float64(removed))
}

func (m *hookMetrics) RecordInstall(duration time.Duration, errorCode string) {
	label := errorCode
	if label == "" {
		label = "ok"
	}
	m.installTotal.WithLabelValues(label).Inc()
	m.installDuration.Observe(duration.Seconds() * 1000)
}

func (m *hookMetrics) SetHandlerCount(funcID uint32, count int) {
	m.handlerCount.WithLabelValues(funcIDLabel(funcID)).Set(float64(count))
}

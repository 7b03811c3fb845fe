package prometheus

import (
	"time"

	"github.com/atfkit/atf/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterExprMetricsConstructor(newExprMetrics)
}

type exprMetrics struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

func newExprMetrics() metrics.ExprMetrics {
	reg := metrics.GetRegistry()

	return &exprMetrics{
		stageTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "atf_expr_stage_total",
				Help: "Total number of expression pipeline stage executions by stage and status",
			},
			[]string{"stage", "error_code"},
		),
		stageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atf_expr_stage_duration_milliseconds",
				Help:    "Duration of expression pipeline stages in milliseconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"stage"},
		),
	}
}

func (m *exprMetrics) RecordStage(stage string, duration time.Duration, errorCode string) {
	label := errorCode
	if label == "" {
		label = "ok"
	}
	m.stageTotal.WithLabelValues(stage, label).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds() * 1000)
}

package metrics

import "time"

// HookMetrics provides observability for HookCore attach/detach/install
// operations. Implementations are optional - pass nil to disable metrics
// collection with zero overhead.
type HookMetrics interface {
	// RecordAttach records a handler attach with its mode and outcome.
	RecordAttach(mode string, duration time.Duration, errorCode string)

	// RecordDetach records a handler detach with its outcome.
	RecordDetach(errorCode string)

	// RecordDetachAll records a DetachAll sweep and how many handlers it removed.
	RecordDetachAll(removed int)

	// RecordInstall records a detour installation for a func ID.
	RecordInstall(duration time.Duration, errorCode string)

	// SetHandlerCount updates the current handler-list length for a func ID.
	SetHandlerCount(funcID uint32, count int)
}

var newPrometheusHookMetrics func() HookMetrics

// RegisterHookMetricsConstructor registers the Prometheus HookMetrics
// constructor. Called from pkg/metrics/prometheus/hook.go's init.
func RegisterHookMetricsConstructor(constructor func() HookMetrics) {
	newPrometheusHookMetrics = constructor
}

// NewHookMetrics creates a Prometheus-backed HookMetrics instance, or nil if
// metrics are not enabled.
func NewHookMetrics() HookMetrics {
	if !IsEnabled() || newPrometheusHookMetrics == nil {
		return nil
	}
	return newPrometheusHookMetrics()
}

// Package metrics defines nil-safe metrics interfaces for ATF's components
// (MessageServer, HookCore, MemCore) and a Prometheus registry gate. Concrete
// collectors live in pkg/metrics/prometheus and register themselves here
// through constructor indirection, so components never import the
// prometheus client library; this package imports it only for the registry
// and the HTTP handler.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates the Prometheus registry
// that all collectors created after this call will register against.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	enabled = true
	registry = prometheus.NewRegistry()
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the active Prometheus registry, or nil if metrics are
// not enabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Handler returns an http.Handler serving the registry in the Prometheus
// text exposition format. Returns nil if metrics are not enabled.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

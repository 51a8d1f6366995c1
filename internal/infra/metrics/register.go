package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	queued   []prometheus.Collector
	registry = prometheus.NewRegistry()
)

// register is called from init() in each metrics file.
func register(cs ...prometheus.Collector) {
	queued = append(queued, cs...)
}

// MustRegister adds every queued collector, plus the Go runtime and process
// collectors, to the package registry. Safe to call more than once.
func MustRegister() {
	once.Do(func() {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registry.MustRegister(queued...)
	})
}

// Handler serves the package registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

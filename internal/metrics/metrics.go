// Package metrics exposes collection results as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the daemon's metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	collections     *prometheus.CounterVec
	collectDuration *prometheus.HistogramVec
	panelLines      *prometheus.GaugeVec
	memoryUsed      prometheus.Gauge
	memoryTotal     prometheus.Gauge
	boxInfo         *prometheus.GaugeVec
}

// NewRecorder creates a recorder with Go runtime and process collectors
// registered alongside the boxinfo metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		collections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxinfo_panel_collections_total",
				Help: "Panel collections by panel and final state",
			},
			[]string{"panel", "state"},
		),
		collectDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boxinfo_panel_collect_duration_seconds",
				Help:    "Time from opening a panel until all its requests completed",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"panel"},
		),
		panelLines: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boxinfo_panel_lines",
				Help: "Number of lines in the last collection of a panel",
			},
			[]string{"panel"},
		),
		memoryUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boxinfo_memory_used_percent",
			Help: "Used memory in percent, buffers and cache counted as free",
		}),
		memoryTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boxinfo_memory_total_kilobytes",
			Help: "Total memory reported by /proc/meminfo",
		}),
		boxInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boxinfo_box_info",
				Help: "Box identity, always 1",
			},
			[]string{"model", "platform", "kernel"},
		),
	}
	r.registry.MustRegister(
		r.collections,
		r.collectDuration,
		r.panelLines,
		r.memoryUsed,
		r.memoryTotal,
		r.boxInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveCollection records one finished panel collection.
func (r *Recorder) ObserveCollection(panel, state string, lines int, duration time.Duration) {
	r.collections.WithLabelValues(panel, state).Inc()
	r.collectDuration.WithLabelValues(panel).Observe(duration.Seconds())
	r.panelLines.WithLabelValues(panel).Set(float64(lines))
}

// ObserveMemory records the latest memory sample.
func (r *Recorder) ObserveMemory(totalKB int64, usedPercent float64) {
	r.memoryTotal.Set(float64(totalKB))
	r.memoryUsed.Set(usedPercent)
}

// SetBoxInfo publishes the box identity.
func (r *Recorder) SetBoxInfo(model, platform, kernel string) {
	r.boxInfo.Reset()
	r.boxInfo.WithLabelValues(model, platform, kernel).Set(1)
}

// Registry returns the registry metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

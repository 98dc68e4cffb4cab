// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package engine

import (
	"time"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics describe the last run. They are written as a node-exporter textfile, not served.
type Metrics struct {
	registry *prometheus.Registry
	phase    *prometheus.GaugeVec
	modules  *prometheus.GaugeVec
	applied  prometheus.Gauge
	success  prometheus.Gauge
	last     prometheus.Gauge
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "osgconf", Name: "phase_duration_seconds", Help: "Duration of each phase of the last run.",
		}, []string{"phase"}),
		modules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "osgconf", Name: "modules", Help: "Number of modules by state after parse.",
		}, []string{"state"}),
		applied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "osgconf", Name: "modules_applied", Help: "Number of modules applied in the last run.",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "osgconf", Name: "last_run_success", Help: "1 if the last run succeeded, 0 otherwise.",
		}),
		last: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "osgconf", Name: "last_run_timestamp_seconds", Help: "Time the last run finished.",
		}),
	}
	m.registry.MustRegister(m.phase, m.modules, m.applied, m.success, m.last)
	return m
}

// Observe records the duration of a phase that began at start.
func (m *Metrics) Observe(phase string, start time.Time) {
	m.phase.WithLabelValues(phase).Set(time.Since(start).Seconds())
}

func (m *Metrics) states(modules []osgconf.Module) {
	m.modules.Reset()
	for _, s := range []osgconf.State{osgconf.Enabled, osgconf.Disabled, osgconf.Ignored} {
		m.modules.WithLabelValues(string(s)).Set(0)
	}
	for _, mod := range modules {
		m.modules.WithLabelValues(string(mod.State())).Inc()
	}
}

// Done records the outcome of a run.
func (m *Metrics) Done(err error) {
	if err == nil {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
	m.last.SetToCurrentTime()
}

// Gatherer returns the metrics registry.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteFile atomically writes the metrics in text format.
func (m *Metrics) WriteFile(path string) error { return prometheus.WriteToTextfile(path, m.registry) }

// Package metrics instruments the synthesis pipeline with Prometheus
// collectors. The engine records into a Registry handed to it; callers own
// exposition (or dump the gathered families in-process).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the synthesis engine
type Registry struct {
	registry *prometheus.Registry

	// Generation metrics
	TopologiesTotal    *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	PhaseDuration      *prometheus.HistogramVec
	DevicesGenerated   prometheus.Histogram
	LinksGenerated     prometheus.Histogram

	// Optimization metrics
	OptimizationIterations   prometheus.Histogram
	OptimizationPartialTotal prometheus.Counter

	// Degradation metrics
	RedundancyWarningsTotal prometheus.Counter
	ExhaustionTotal         prometheus.Counter
}

// NewRegistry creates and registers all synthesis metrics
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		TopologiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netforge_topologies_generated_total",
			Help: "Total topologies generated, by archetype and outcome",
		}, []string{"archetype", "status"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netforge_generation_duration_seconds",
			Help:    "End-to-end topology generation duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"archetype"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netforge_phase_duration_seconds",
			Help:    "Duration of individual synthesis phases",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"phase"}),
		DevicesGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netforge_devices_per_topology",
			Help:    "Device count per generated topology",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		LinksGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netforge_links_per_topology",
			Help:    "Link count per generated topology",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		OptimizationIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netforge_optimization_iterations",
			Help:    "Local-search iterations spent per optimized topology",
			Buckets: prometheus.LinearBuckets(0, 50, 10),
		}),
		OptimizationPartialTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netforge_optimization_partial_total",
			Help: "Optimization passes that exhausted their budget",
		}),
		RedundancyWarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netforge_redundancy_warnings_total",
			Help: "Devices whose redundancy augmentation was skipped",
		}),
		ExhaustionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netforge_address_exhaustion_total",
			Help: "Generations aborted because the address space was exhausted",
		}),
	}

	reg.MustRegister(
		r.TopologiesTotal,
		r.GenerationDuration,
		r.PhaseDuration,
		r.DevicesGenerated,
		r.LinksGenerated,
		r.OptimizationIterations,
		r.OptimizationPartialTotal,
		r.RedundancyWarningsTotal,
		r.ExhaustionTotal,
	)
	return r
}

// RecordGeneration records a completed (or failed) generation
func (r *Registry) RecordGeneration(archetype, status string, devices, links int, duration time.Duration) {
	r.TopologiesTotal.WithLabelValues(archetype, status).Inc()
	if status == "ok" {
		r.GenerationDuration.WithLabelValues(archetype).Observe(duration.Seconds())
		r.DevicesGenerated.Observe(float64(devices))
		r.LinksGenerated.Observe(float64(links))
	}
}

// RecordPhase records one pipeline phase duration
func (r *Registry) RecordPhase(phase string, duration time.Duration) {
	r.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordOptimization records an optimization pass
func (r *Registry) RecordOptimization(iterations int, partial bool) {
	r.OptimizationIterations.Observe(float64(iterations))
	if partial {
		r.OptimizationPartialTotal.Inc()
	}
}

// Gatherer exposes the underlying registry for exposition or test assertions
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

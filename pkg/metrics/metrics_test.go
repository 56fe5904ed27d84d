package metrics

import (
	"testing"
	"time"
)

func gatherCount(t *testing.T, r *Registry) map[string]bool {
	t.Helper()
	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

func TestRecordGenerationExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordGeneration("enterprise", "ok", 65, 80, 120*time.Millisecond)
	r.RecordPhase("link", 5*time.Millisecond)
	r.RecordOptimization(150, true)

	names := gatherCount(t, r)
	for _, want := range []string{
		"netforge_topologies_generated_total",
		"netforge_generation_duration_seconds",
		"netforge_phase_duration_seconds",
		"netforge_devices_per_topology",
		"netforge_links_per_topology",
		"netforge_optimization_iterations",
		"netforge_optimization_partial_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not exported (have %v)", want, names)
		}
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.RecordGeneration("campus", "ok", 10, 12, time.Millisecond)

	families, err := b.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "netforge_topologies_generated_total" {
			for _, m := range mf.GetMetric() {
				if m.GetCounter().GetValue() != 0 {
					t.Fatal("registry b observed registry a's counter")
				}
			}
		}
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistryRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.IncRemoveAbsorbedCallCount()
	r.AddAbsorbedClausesRemoved(3)
	r.ObserveUnitLiteralsRemoved(2)
	r.SampleFormula(10, 4, 3)

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(metricFamilies) == 0 {
		t.Fatalf("expected at least one registered metric family")
	}
}

func TestTimerStopTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)
	timer := r.TimeEliminateVars()
	timer.Stop()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected stopping an already-stopped timer to panic")
		}
	}()
	timer.Stop()
}

func TestNilRegistryIsNoOp(t *testing.T) {
	var r *Registry
	r.IncRemoveAbsorbedCallCount()
	r.AddAbsorbedClausesRemoved(5)
	r.ObserveUnitLiteralsRemoved(1)
	r.SampleFormula(1, 1, 1)

	timer := r.TimeEliminateVars()
	timer.Stop()
}

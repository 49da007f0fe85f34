package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/beamhard/internal/xray"
)

func TestObserveSimulation(t *testing.T) {
	r := NewRecorder()
	r.ObserveSimulation(time.Millisecond, &xray.EffectiveEnergyResult{
		Nominal: xray.PathSolution{Status: xray.StatusSolved},
		Thin:    xray.PathSolution{Status: xray.StatusNoSolution},
	})
	r.ObserveSimulation(time.Millisecond, &xray.EffectiveEnergyResult{
		Nominal: xray.PathSolution{Status: xray.StatusDegenerate},
		Thin:    xray.PathSolution{Status: xray.StatusDegenerate},
	})

	if got := testutil.ToFloat64(r.simulations); got != 2 {
		t.Errorf("expected 2 simulations, got %g", got)
	}
	if got := testutil.ToFloat64(r.noSolution); got != 1 {
		t.Errorf("expected 1 no-solution, got %g", got)
	}
	if got := testutil.ToFloat64(r.degenerate); got != 2 {
		t.Errorf("expected 2 degenerate, got %g", got)
	}
}

func TestObserveSweep(t *testing.T) {
	r := NewRecorder()
	r.ObserveSweep(time.Millisecond, &xray.ThicknessCurve{Points: []xray.SweepPoint{
		{ThicknessCM: 0}, {ThicknessCM: 0.1}, {ThicknessCM: 0.2, Degenerate: true},
	}})

	if got := testutil.ToFloat64(r.sweepSteps); got != 3 {
		t.Errorf("expected 3 steps, got %g", got)
	}
	if got := testutil.ToFloat64(r.degenerate); got != 1 {
		t.Errorf("expected 1 degenerate, got %g", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveLookup(KindSolve, time.Millisecond, 0)

	path := filepath.Join(t.TempDir(), "beamhard.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, name := range []string{"beamhard_no_solution_total 1", `beamhard_request_duration_seconds_count{kind="solve"} 1`} {
		if !strings.Contains(string(data), name) {
			t.Errorf("expected %q in textfile:\n%s", name, data)
		}
	}
}

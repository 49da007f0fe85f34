// Package metrics counts simulations, sweeps and their recoverable
// failures in a private Prometheus registry. Batch commands write the
// registry to a textfile for node_exporter to pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/beamhard/internal/xray"
)

const namespace = "beamhard"

// Request kinds for the duration histogram.
const (
	KindSimulate   = "simulate"
	KindSweep      = "sweep"
	KindSolve      = "solve"
	KindSolveRatio = "solve_ratio"
)

type Recorder struct {
	reg         *prometheus.Registry
	simulations prometheus.Counter
	sweepSteps  prometheus.Counter
	degenerate  prometheus.Counter
	noSolution  prometheus.Counter
	duration    *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Spectrum simulations completed.",
		}),
		sweepSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_steps_total",
			Help:      "Thickness sweep steps evaluated.",
		}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_integrals_total",
			Help:      "Paths or sweep steps with a non-positive detected total.",
		}),
		noSolution: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_solution_total",
			Help:      "Effective-energy inversions without a candidate.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Wall time per request.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"kind"}),
	}
	r.reg.MustRegister(r.simulations, r.sweepSteps, r.degenerate, r.noSolution, r.duration)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveSimulation records a simulate+solve request. res may be nil when
// only the spectrum was computed.
func (r *Recorder) ObserveSimulation(elapsed time.Duration, res *xray.EffectiveEnergyResult) {
	r.simulations.Inc()
	r.duration.WithLabelValues(KindSimulate).Observe(elapsed.Seconds())
	if res == nil {
		return
	}
	for _, p := range []xray.PathSolution{res.Nominal, res.Thin} {
		switch p.Status {
		case xray.StatusDegenerate:
			r.degenerate.Inc()
		case xray.StatusNoSolution:
			r.noSolution.Inc()
		}
	}
}

func (r *Recorder) ObserveSweep(elapsed time.Duration, curve *xray.ThicknessCurve) {
	r.duration.WithLabelValues(KindSweep).Observe(elapsed.Seconds())
	if curve == nil {
		return
	}
	r.sweepSteps.Add(float64(len(curve.Points)))
	r.degenerate.Add(float64(curve.DegenerateCount()))
}

// ObserveLookup records a direct energy lookup with its candidate count.
func (r *Recorder) ObserveLookup(kind string, elapsed time.Duration, candidates int) {
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if candidates == 0 {
		r.noSolution.Inc()
	}
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

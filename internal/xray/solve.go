package xray

import (
	"fmt"
	"math"

	"github.com/san-kum/beamhard/internal/logging"
)

// Path selects which sample thickness an effective energy is solved for.
type Path int

const (
	// PathNominal uses the full sample thickness.
	PathNominal Path = iota
	// PathThin uses the sample thickness scaled by ThinFactor.
	PathThin
)

func (p Path) String() string {
	switch p {
	case PathNominal:
		return "nominal"
	case PathThin:
		return "thin"
	}
	return fmt.Sprintf("path(%d)", int(p))
}

// PathStatus is the outcome of solving one path.
type PathStatus int

const (
	StatusSolved PathStatus = iota
	StatusNoSolution
	StatusDegenerate
)

func (s PathStatus) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusNoSolution:
		return "no solution"
	case StatusDegenerate:
		return "degenerate"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// PathSolution is the effective-energy inversion for one path.
type PathSolution struct {
	Path         Path
	Status       PathStatus
	PathLengthCM float64
	// TauDetected is −ln(I/I0) over the detected totals.
	TauDetected float64
	// MuLin is the effective linear attenuation in cm⁻¹.
	MuLin float64
	// EnergiesKeV holds the candidates in the order the inverter returned them.
	EnergiesKeV []float64
}

// Err returns the sentinel matching a non-solved status, or nil.
func (p PathSolution) Err() error {
	switch p.Status {
	case StatusNoSolution:
		return ErrNoSolution
	case StatusDegenerate:
		return ErrDegenerateIntegral
	}
	return nil
}

// Match pairs the j-th nominal and thin candidates.
type Match struct {
	Index            int     `json:"index"`
	NominalKeV       float64 `json:"nominal_kev"`
	ThinKeV          float64 `json:"thin_kev"`
	DriftKeV         float64 `json:"drift_kev"`
	HardeningPercent float64 `json:"hardening_percent"`
}

// EffectiveEnergyResult combines both paths. Candidates beyond the shorter
// path's count are kept as unmatched.
type EffectiveEnergyResult struct {
	Nominal          PathSolution
	Thin             PathSolution
	Matches          []Match
	UnmatchedNominal []float64
	UnmatchedThin    []float64
}

// HasSolution reports whether at least one nominal/thin pair was found.
func (r *EffectiveEnergyResult) HasSolution() bool {
	return len(r.Matches) > 0
}

// Solver inverts detected totals into effective photon energies.
type Solver struct {
	inv  EnergyInverter
	opts options
}

func NewSolver(inv EnergyInverter, opts ...Option) *Solver {
	return &Solver{inv: inv, opts: newOptions(opts)}
}

// SolvePath computes the effective linear attenuation of the sample along
// one path and inverts it. Degenerate totals and empty inversions are
// reported through the solution status; the error is reserved for
// invalid input and inverter failures.
func (s *Solver) SolvePath(totals IntegratedTotals, sample Material, path Path) (PathSolution, error) {
	if err := sample.Validate("sample"); err != nil {
		return PathSolution{}, err
	}

	sol := PathSolution{Path: path}
	detected := totals.SampleDetected
	sol.PathLengthCM = sample.ThicknessCM
	if path == PathThin {
		detected = totals.ThinDetected
		sol.PathLengthCM = sample.ThicknessCM * ThinFactor
	} else if path != PathNominal {
		return PathSolution{}, invalidParam("unknown path %v", path)
	}

	if totals.FilteredDetected <= 0 || detected <= 0 || sol.PathLengthCM <= 0 {
		sol.Status = StatusDegenerate
		s.opts.logger.V(logging.DEBUG).Info("degenerate path",
			"path", path.String(),
			"filteredDetected", totals.FilteredDetected,
			"detected", detected,
			"pathLengthCM", sol.PathLengthCM)
		return sol, nil
	}

	sol.TauDetected = math.Max(0, -math.Log(detected/totals.FilteredDetected))
	sol.MuLin = sol.TauDetected / sol.PathLengthCM

	energies, err := s.inv.EnergiesForMuLin(sample.Formula, sol.MuLin, sample.Density, TotalAttenuation)
	if err != nil {
		return PathSolution{}, &StageError{Stage: "inversion", Err: formulaErr(sample.Formula, err)}
	}
	if len(energies) == 0 {
		sol.Status = StatusNoSolution
		s.opts.logger.V(logging.DEBUG).Info("no effective energy", "path", path.String(), "muLin", sol.MuLin)
		return sol, nil
	}
	sol.EnergiesKeV = make([]float64, len(energies))
	for i, e := range energies {
		sol.EnergiesKeV[i] = e * 1000
	}
	s.opts.logger.V(logging.TRACE).Info("effective energy", "path", path.String(), "muLin", sol.MuLin, "candidatesKeV", sol.EnergiesKeV)
	return sol, nil
}

// Solve runs both paths and pairs their candidates.
func (s *Solver) Solve(totals IntegratedTotals, sample Material) (*EffectiveEnergyResult, error) {
	nominal, err := s.SolvePath(totals, sample, PathNominal)
	if err != nil {
		return nil, err
	}
	thin, err := s.SolvePath(totals, sample, PathThin)
	if err != nil {
		return nil, err
	}
	res := &EffectiveEnergyResult{Nominal: nominal, Thin: thin}
	res.Matches, res.UnmatchedNominal, res.UnmatchedThin = Pair(nominal.EnergiesKeV, thin.EnergiesKeV)
	return res, nil
}

// Pair matches candidates by position. drift = nominal − thin and the
// hardening percentage is drift relative to the nominal energy.
func Pair(nominal, thin []float64) (matches []Match, unmatchedNominal, unmatchedThin []float64) {
	n := min(len(nominal), len(thin))
	for j := 0; j < n; j++ {
		m := Match{Index: j, NominalKeV: nominal[j], ThinKeV: thin[j]}
		m.DriftKeV = m.NominalKeV - m.ThinKeV
		if m.NominalKeV != 0 {
			m.HardeningPercent = m.DriftKeV / m.NominalKeV * 100
		}
		matches = append(matches, m)
	}
	if len(nominal) > n {
		unmatchedNominal = append([]float64(nil), nominal[n:]...)
	}
	if len(thin) > n {
		unmatchedThin = append([]float64(nil), thin[n:]...)
	}
	return matches, unmatchedNominal, unmatchedThin
}

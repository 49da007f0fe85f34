package xray

import (
	"errors"
	"fmt"
)

// Domain errors for spectrum simulation and effective-energy solving.
var (
	// ErrInvalidFormula indicates a formula the cross-section service rejected.
	ErrInvalidFormula = errors.New("xray: invalid formula")

	// ErrOutOfRangeEnergy indicates a grid energy outside 1 keV to 100 GeV.
	ErrOutOfRangeEnergy = errors.New("xray: energy out of range")

	// ErrDegenerateIntegral indicates an integrated total that is not positive.
	ErrDegenerateIntegral = errors.New("xray: degenerate integral")

	// ErrNoSolution indicates the inversion produced no candidate energy.
	ErrNoSolution = errors.New("xray: no effective energy solution")

	// ErrInvalidParameter indicates a request parameter outside its valid range.
	ErrInvalidParameter = errors.New("xray: invalid parameter")
)

// StageError wraps an error with the pipeline stage and energy bin it
// occurred at.
type StageError struct {
	Stage     string
	EnergyKeV float64
	Err       error
}

func (e *StageError) Error() string {
	if e.EnergyKeV > 0 {
		return fmt.Sprintf("%s stage at %g keV: %v", e.Stage, e.EnergyKeV, e.Err)
	}
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// FormulaFault is implemented by collaborator errors that blame the
// formula or element symbol they were given.
type FormulaFault interface {
	FormulaFault() bool
}

// joinSentinel tags a collaborator error with a domain sentinel so both
// match errors.Is.
func joinSentinel(sentinel error, subject string, err error) error {
	return fmt.Errorf("%w: %q: %w", sentinel, subject, err)
}

// formulaErr adds ErrInvalidFormula to err only when the collaborator
// reported a formula fault. Anything else passes through unchanged.
func formulaErr(subject string, err error) error {
	var ff FormulaFault
	if errors.As(err, &ff) && ff.FormulaFault() {
		return joinSentinel(ErrInvalidFormula, subject, err)
	}
	return err
}

package physics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrBadFormula indicates a formula string that cannot be parsed.
	ErrBadFormula = errors.New("physics: malformed formula")

	// ErrEnergyRange indicates an energy outside the tabulated range.
	ErrEnergyRange = errors.New("physics: energy outside supported range")

	// ErrUnknownKind indicates an unsupported cross-section kind.
	ErrUnknownKind = errors.New("physics: unknown cross-section kind")
)

// FormulaError describes why a formula was rejected.
type FormulaError struct {
	Formula string
	Reason  string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrBadFormula, e.Formula, e.Reason)
}

func (e *FormulaError) Unwrap() error {
	return ErrBadFormula
}

// FormulaFault marks the error as caused by the formula itself.
func (e *FormulaError) FormulaFault() bool { return true }

// Component is one atom species in a formula.
type Component struct {
	Element      Element
	Count        float64
	MassFraction float64
}

// Formula is a parsed compound such as "Ca:1:C:1:O:3".
type Formula struct {
	Text       string
	Components []Component
	MolarMass  float64
}

// ParseFormula parses the colon separated "Symbol:count" notation. Counts
// may be fractional but must be positive. A repeated symbol accumulates.
// A bare symbol such as "Cu" is the element itself.
func ParseFormula(text string) (*Formula, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &FormulaError{Formula: text, Reason: "empty"}
	}

	fields := strings.Split(trimmed, ":")
	if len(fields) == 1 {
		fields = append(fields, "1")
	}
	if len(fields)%2 != 0 {
		return nil, &FormulaError{Formula: text, Reason: "expected symbol:count pairs"}
	}

	counts := make(map[string]float64)
	order := make([]string, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		sym := strings.TrimSpace(fields[i])
		if _, ok := LookupElement(sym); !ok {
			return nil, &FormulaError{Formula: text, Reason: fmt.Sprintf("unknown element %q", sym)}
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &FormulaError{Formula: text, Reason: fmt.Sprintf("bad count %q", fields[i+1])}
		}
		if n <= 0 {
			return nil, &FormulaError{Formula: text, Reason: fmt.Sprintf("count for %s must be positive", sym)}
		}
		if _, seen := counts[sym]; !seen {
			order = append(order, sym)
		}
		counts[sym] += n
	}

	f := &Formula{Text: trimmed, Components: make([]Component, 0, len(order))}
	for _, sym := range order {
		el, _ := LookupElement(sym)
		f.MolarMass += counts[sym] * el.AtomicWeight
		f.Components = append(f.Components, Component{Element: el, Count: counts[sym]})
	}
	for i := range f.Components {
		c := &f.Components[i]
		c.MassFraction = c.Count * c.Element.AtomicWeight / f.MolarMass
	}
	return f, nil
}

// Edges lists the absorption edges of every atom in the formula, in
// formula order.
func (f *Formula) Edges() []Edge {
	var edges []Edge
	for _, c := range f.Components {
		edges = append(edges, c.Element.Edges()...)
	}
	return edges
}

// IsElement reports whether the formula names a single element.
func (f *Formula) IsElement() bool {
	return len(f.Components) == 1
}

package workbench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/beamhard/internal/config"
)

// field is one editable scenario parameter.
type field struct {
	name    string
	numeric bool
	// nudge is the relative change applied by the arrow keys.
	nudge float64
	get   func(sc *config.Scenario) string
	set   func(sc *config.Scenario, v string) error
}

func number(name string, nudge float64, ptr func(sc *config.Scenario) *float64) field {
	return field{
		name:    name,
		numeric: true,
		nudge:   nudge,
		get: func(sc *config.Scenario) string {
			return strconv.FormatFloat(*ptr(sc), 'g', 6, 64)
		},
		set: func(sc *config.Scenario, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: %q is not a number", name, v)
			}
			*ptr(sc) = f
			return nil
		},
	}
}

func text(name string, ptr func(sc *config.Scenario) *string) field {
	return field{
		name: name,
		get:  func(sc *config.Scenario) string { return *ptr(sc) },
		set: func(sc *config.Scenario, v string) error {
			*ptr(sc) = strings.TrimSpace(v)
			return nil
		},
	}
}

var fields = []field{
	text("target", func(sc *config.Scenario) *string { return &sc.Source.Target }),
	number("kV", 0.05, func(sc *config.Scenario) *float64 { return &sc.Source.KV }),
	number("mA", 0.1, func(sc *config.Scenario) *float64 { return &sc.Source.MA }),
	text("filter", func(sc *config.Scenario) *string { return &sc.Filter.Formula }),
	number("filter cm", 0.1, func(sc *config.Scenario) *float64 { return &sc.Filter.ThicknessCM }),
	text("sample", func(sc *config.Scenario) *string { return &sc.Sample.Formula }),
	number("sample cm", 0.1, func(sc *config.Scenario) *float64 { return &sc.Sample.ThicknessCM }),
	number("sample g/cc", 0.05, func(sc *config.Scenario) *float64 { return &sc.Sample.Density }),
	text("detector", func(sc *config.Scenario) *string { return &sc.Detector.Formula }),
	number("detector cm", 0.1, func(sc *config.Scenario) *float64 { return &sc.Detector.ThicknessCM }),
	number("detector g/cc", 0.05, func(sc *config.Scenario) *float64 { return &sc.Detector.Density }),
	number("from keV", 0.1, func(sc *config.Scenario) *float64 { return &sc.Energy.FromKeV }),
	number("inc keV", 0.1, func(sc *config.Scenario) *float64 { return &sc.Energy.IncKeV }),
}

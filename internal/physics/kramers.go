package physics

import (
	"fmt"
	"math"
)

// Kramers evaluates the thick-target bremsstrahlung approximation
// I(E) = K·Z·mA·(kV − E)/E in relative photon units.
type Kramers struct {
	// K scales the whole spectrum. Zero means 1.
	K float64
}

// Intensity returns the source intensity at energyMeV for a tube at kv
// and ma with the given anode element. Energies at or above kv yield 0.
func (k Kramers) Intensity(kv, ma float64, target string, energyMeV float64) (float64, error) {
	el, ok := LookupElement(target)
	if !ok {
		return 0, &FormulaError{Formula: target, Reason: "unknown target element"}
	}
	if math.IsNaN(energyMeV) || energyMeV <= 0 {
		return 0, fmt.Errorf("%w: %g MeV", ErrEnergyRange, energyMeV)
	}
	keV := energyMeV * 1000
	if keV >= kv {
		return 0, nil
	}
	scale := k.K
	if scale == 0 {
		scale = 1
	}
	return scale * float64(el.Z) * ma * (kv - keV) / keV, nil
}

// TubeTargets lists the anode materials offered for X-ray tubes.
func TubeTargets() []string {
	return []string{"Ag", "Au", "Cr", "Cu", "Mo", "Rh", "W"}
}

// WavelengthAngstrom converts photon energy in keV to wavelength in Å.
func WavelengthAngstrom(keV float64) float64 {
	return 12.41 / keV
}

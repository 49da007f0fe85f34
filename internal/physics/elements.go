package physics

import (
	"sort"
	"strings"
)

// Element holds the tabulated data the attenuation model needs for one atom.
// Edge energies are in keV; an L3 edge of 0 means the edge lies below the
// supported range and is ignored.
type Element struct {
	Z            int
	Symbol       string
	Name         string
	AtomicWeight float64 // g/mol
	Density      float64 // g/cc at room temperature
	KEdge        float64
	L3Edge       float64
}

var elementTable = []Element{
	{1, "H", "Hydrogen", 1.008, 8.375e-5, 0.0136, 0},
	{5, "B", "Boron", 10.81, 2.37, 0.188, 0},
	{6, "C", "Carbon", 12.011, 2.0, 0.284, 0},
	{7, "N", "Nitrogen", 14.007, 1.165e-3, 0.410, 0},
	{8, "O", "Oxygen", 15.999, 1.332e-3, 0.543, 0},
	{9, "F", "Fluorine", 18.998, 1.58e-3, 0.697, 0},
	{11, "Na", "Sodium", 22.990, 0.971, 1.072, 0},
	{12, "Mg", "Magnesium", 24.305, 1.74, 1.305, 0},
	{13, "Al", "Aluminum", 26.982, 2.699, 1.560, 0},
	{14, "Si", "Silicon", 28.085, 2.33, 1.839, 0},
	{15, "P", "Phosphorus", 30.974, 1.82, 2.146, 0},
	{16, "S", "Sulfur", 32.06, 2.07, 2.472, 0},
	{17, "Cl", "Chlorine", 35.45, 2.995e-3, 2.822, 0},
	{19, "K", "Potassium", 39.098, 0.862, 3.608, 0},
	{20, "Ca", "Calcium", 40.078, 1.55, 4.038, 0},
	{22, "Ti", "Titanium", 47.867, 4.54, 4.966, 0},
	{24, "Cr", "Chromium", 51.996, 7.18, 5.989, 0},
	{26, "Fe", "Iron", 55.845, 7.874, 7.112, 0},
	{28, "Ni", "Nickel", 58.693, 8.902, 8.333, 0},
	{29, "Cu", "Copper", 63.546, 8.96, 8.979, 0},
	{30, "Zn", "Zinc", 65.38, 7.133, 9.659, 1.021},
	{32, "Ge", "Germanium", 72.63, 5.323, 11.103, 1.217},
	{35, "Br", "Bromine", 79.904, 3.12, 13.474, 1.550},
	{40, "Zr", "Zirconium", 91.224, 6.506, 17.998, 2.223},
	{41, "Nb", "Niobium", 92.906, 8.57, 18.986, 2.371},
	{42, "Mo", "Molybdenum", 95.95, 10.22, 20.000, 2.520},
	{45, "Rh", "Rhodium", 102.906, 12.41, 23.220, 3.004},
	{47, "Ag", "Silver", 107.868, 10.50, 25.514, 3.351},
	{50, "Sn", "Tin", 118.71, 7.31, 29.200, 3.929},
	{53, "I", "Iodine", 126.904, 4.93, 33.169, 4.557},
	{55, "Cs", "Cesium", 132.905, 1.873, 35.985, 5.012},
	{56, "Ba", "Barium", 137.327, 3.5, 37.441, 5.247},
	{64, "Gd", "Gadolinium", 157.25, 7.90, 50.239, 7.243},
	{68, "Er", "Erbium", 167.259, 9.066, 57.486, 8.358},
	{73, "Ta", "Tantalum", 180.948, 16.654, 67.416, 9.881},
	{74, "W", "Tungsten", 183.84, 19.3, 69.525, 10.207},
	{79, "Au", "Gold", 196.967, 19.32, 80.725, 11.919},
	{82, "Pb", "Lead", 207.2, 11.35, 88.005, 13.035},
	{83, "Bi", "Bismuth", 208.980, 9.747, 90.526, 13.419},
	{92, "U", "Uranium", 238.029, 18.95, 115.606, 17.166},
}

var elementsBySymbol = func() map[string]Element {
	m := make(map[string]Element, len(elementTable))
	for _, el := range elementTable {
		m[el.Symbol] = el
	}
	return m
}()

// LookupElement returns the element with the given symbol. Symbols are
// case sensitive ("Co" is not "CO").
func LookupElement(symbol string) (Element, bool) {
	el, ok := elementsBySymbol[strings.TrimSpace(symbol)]
	return el, ok
}

// Elements returns the table ordered by atomic number.
func Elements() []Element {
	out := make([]Element, len(elementTable))
	copy(out, elementTable)
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// ElementDensity returns the tabulated density of a single element, the
// value used when a filter density is left unset.
func ElementDensity(symbol string) (float64, error) {
	el, ok := LookupElement(symbol)
	if !ok {
		return 0, &FormulaError{Formula: symbol, Reason: "unknown element"}
	}
	return el.Density, nil
}

// Edge is an absorption edge of one atom in a formula.
type Edge struct {
	Symbol string
	Shell  string
	KeV    float64
}

// Edges lists the K and L3 absorption edges of an element inside the
// supported energy range.
func (e Element) Edges() []Edge {
	edges := make([]Edge, 0, 2)
	if e.KEdge >= MinEnergyKeV {
		edges = append(edges, Edge{Symbol: e.Symbol, Shell: "K", KeV: e.KEdge})
	}
	if e.L3Edge >= MinEnergyKeV {
		edges = append(edges, Edge{Symbol: e.Symbol, Shell: "L3", KeV: e.L3Edge})
	}
	return edges
}

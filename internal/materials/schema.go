package materials

const schema = `
CREATE TABLE IF NOT EXISTS materials (
    name TEXT PRIMARY KEY,
    formula TEXT NOT NULL,
    density REAL NOT NULL CHECK (density > 0),
    builtin INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_materials_formula ON materials(formula);
`

// Defaults seed an empty library. Densities are in g/cc.
var Defaults = []Material{
	{Name: "Water", Formula: "H:2:O:1", Density: 1.0},
	{Name: "Calcite", Formula: "Ca:1:C:1:O:3", Density: 2.71},
	{Name: "Quartz", Formula: "Si:1:O:2", Density: 2.65},
	{Name: "Hydroxyapatite", Formula: "Ca:5:P:3:O:13:H:1", Density: 3.16},
	{Name: "Soft tissue", Formula: "H:10.12:C:1.19:N:0.243:O:4.425:Na:0.0087:P:0.0097:S:0.0094:Cl:0.0056:K:0.0077", Density: 1.06},
	{Name: "Polyethylene", Formula: "C:2:H:4", Density: 0.94},
	{Name: "PMMA", Formula: "C:5:H:8:O:2", Density: 1.19},
	{Name: "Cesium iodide", Formula: "Cs:1:I:1", Density: 4.51},
	{Name: "Gadolinium oxysulfide", Formula: "Gd:2:O:2:S:1", Density: 7.32},
	{Name: "Sodium iodide", Formula: "Na:1:I:1", Density: 3.67},
	{Name: "Aluminum", Formula: "Al", Density: 2.699},
	{Name: "Copper", Formula: "Cu", Density: 8.96},
	{Name: "Iron", Formula: "Fe", Density: 7.874},
	{Name: "Lead", Formula: "Pb", Density: 11.35},
}

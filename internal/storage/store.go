package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/beamhard/internal/physics"
	"github.com/san-kum/beamhard/internal/xray"
)

// Run kinds.
const (
	KindSimulation = "simulate"
	KindSweep      = "sweep"
)

const (
	metadataFile = "metadata.json"
	spectrumFile = "spectrum.csv"
	curveFile    = "curve.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Grid echoes the energy grid a run used.
type Grid struct {
	StartKeV     float64 `json:"start_kev"`
	EndKeV       float64 `json:"end_kev"`
	IncrementKeV float64 `json:"increment_kev"`
	Bins         int     `json:"bins"`
}

func GridOf(g xray.EnergyGrid) Grid {
	return Grid{StartKeV: g.Start(), EndKeV: g.End(), IncrementKeV: g.Increment(), Bins: g.Len()}
}

type RunMetadata struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	Scenario  string        `json:"scenario"`
	Timestamp time.Time     `json:"timestamp"`
	Source    xray.Source   `json:"source"`
	Filter    xray.Material `json:"filter"`
	Sample    xray.Material `json:"sample"`
	Detector  xray.Material `json:"detector"`
	Grid      Grid          `json:"grid"`

	Totals              *xray.IntegratedTotals `json:"totals,omitempty"`
	Matches             []xray.Match           `json:"matches,omitempty"`
	UnmatchedNominalKeV []float64              `json:"unmatched_nominal_kev,omitempty"`
	UnmatchedThinKeV    []float64              `json:"unmatched_thin_kev,omitempty"`
	NominalStatus       string                 `json:"nominal_status,omitempty"`
	ThinStatus          string                 `json:"thin_status,omitempty"`

	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// NewMetadata describes a run of req. The id and timestamp are filled in
// when the run is saved.
func NewMetadata(kind, scenario string, req xray.Request) RunMetadata {
	return RunMetadata{
		Kind:     kind,
		Scenario: scenario,
		Source:   req.Source,
		Filter:   req.Filter,
		Sample:   req.Sample,
		Detector: req.Detector,
		Grid:     GridOf(req.Grid),
	}
}

// ApplyResult copies an effective-energy result into the metadata.
func (m *RunMetadata) ApplyResult(res *xray.EffectiveEnergyResult) {
	if res == nil {
		return
	}
	m.Matches = res.Matches
	m.UnmatchedNominalKeV = res.UnmatchedNominal
	m.UnmatchedThinKeV = res.UnmatchedThin
	m.NominalStatus = res.Nominal.Status.String()
	m.ThinStatus = res.Thin.Status.String()
}

func (s *Store) newRunDir(kind, scenario string) (string, string, error) {
	if scenario == "" {
		scenario = "run"
	}
	base := fmt.Sprintf("%s_%s_%d", kind, scenario, s.now().Unix())
	runID := base
	for i := 2; ; i++ {
		_, err := os.Stat(filepath.Join(s.baseDir, runID))
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", "", err
	}
	return runID, runDir, nil
}

func (s *Store) writeMetadata(runDir string, meta RunMetadata) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveSimulation stores a spectrum run and returns its id.
func (s *Store) SaveSimulation(meta RunMetadata, state *xray.PipelineState) (string, error) {
	runID, runDir, err := s.newRunDir(KindSimulation, meta.Scenario)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Kind = KindSimulation
	meta.Timestamp = s.now()
	if err := s.writeMetadata(runDir, meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, spectrumFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := WriteSpectrumCSV(csvFile, state); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveSweep stores a thickness sweep and returns its id.
func (s *Store) SaveSweep(meta RunMetadata, curve *xray.ThicknessCurve) (string, error) {
	runID, runDir, err := s.newRunDir(KindSweep, meta.Scenario)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Kind = KindSweep
	meta.Timestamp = s.now()
	if err := s.writeMetadata(runDir, meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, curveFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := WriteCurveCSV(csvFile, curve); err != nil {
		return "", err
	}
	return runID, nil
}

var spectrumHeader = []string{
	"energy_kev", "wavelength_a", "source", "filtered", "filtered_detected",
	"sample_transmitted", "thin_transmitted", "sample_detected", "thin_detected",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func WriteSpectrumCSV(f io.Writer, state *xray.PipelineState) error {
	w := csv.NewWriter(f)
	if err := w.Write(spectrumHeader); err != nil {
		return err
	}
	for i := 0; i < state.Len(); i++ {
		e := state.EnergyKeV[i]
		row := []string{formatFloat(e), formatFloat(physics.WavelengthAngstrom(e))}
		for _, col := range [][]float64{
			state.Source, state.Filtered, state.FilteredDetected,
			state.SampleTransmitted, state.ThinTransmitted, state.SampleDetected, state.ThinDetected,
		} {
			row = append(row, formatFloat(col[i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func WriteCurveCSV(f io.Writer, curve *xray.ThicknessCurve) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"thickness_cm", "attenuation", "degenerate"}); err != nil {
		return err
	}
	for _, p := range curve.Points {
		if err := w.Write([]string{formatFloat(p.ThicknessCM), formatFloat(p.Attenuation), strconv.FormatBool(p.Degenerate)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// DataPath returns the CSV file holding the run's series.
func (s *Store) DataPath(meta *RunMetadata) string {
	name := spectrumFile
	if meta.Kind == KindSweep {
		name = curveFile
	}
	return filepath.Join(s.baseDir, meta.ID, name)
}

func (s *Store) readCSV(runID, name string) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, name)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		row := make([]float64, len(records[i]))
		for j, field := range records[i] {
			if b, err := strconv.ParseBool(field); err == nil {
				if b {
					row[j] = 1
				}
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", name, i+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadSpectrum reads a simulation run's per-bin spectra.
func (s *Store) LoadSpectrum(runID string) (*xray.PipelineState, error) {
	rows, err := s.readCSV(runID, spectrumFile)
	if err != nil {
		return nil, err
	}
	state := &xray.PipelineState{}
	for _, r := range rows {
		if len(r) < len(spectrumHeader) {
			continue
		}
		state.EnergyKeV = append(state.EnergyKeV, r[0])
		state.Source = append(state.Source, r[2])
		state.Filtered = append(state.Filtered, r[3])
		state.FilteredDetected = append(state.FilteredDetected, r[4])
		state.SampleTransmitted = append(state.SampleTransmitted, r[5])
		state.ThinTransmitted = append(state.ThinTransmitted, r[6])
		state.SampleDetected = append(state.SampleDetected, r[7])
		state.ThinDetected = append(state.ThinDetected, r[8])
	}
	return state, nil
}

// LoadCurve reads a sweep run's attenuation curve.
func (s *Store) LoadCurve(runID string) (*xray.ThicknessCurve, error) {
	rows, err := s.readCSV(runID, curveFile)
	if err != nil {
		return nil, err
	}
	curve := &xray.ThicknessCurve{}
	for _, r := range rows {
		if len(r) < 3 {
			continue
		}
		curve.Points = append(curve.Points, xray.SweepPoint{ThicknessCM: r[0], Attenuation: r[1], Degenerate: r[2] != 0})
	}
	return curve, nil
}

// Package materials keeps a named library of formulas and densities in a
// local SQLite database.
package materials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/beamhard/internal/physics"
)

const dbFile = "materials.db"

var (
	ErrNotFound = errors.New("materials: not found")
	ErrExists   = errors.New("materials: already exists")
	ErrInvalid  = errors.New("materials: invalid material")
)

type Material struct {
	Name    string  `json:"name" yaml:"name"`
	Formula string  `json:"formula" yaml:"formula"`
	Density float64 `json:"density" yaml:"density"`
	Builtin bool    `json:"builtin" yaml:"builtin"`
}

// Validate checks the formula parses and the density is positive.
func (m Material) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalid)
	}
	if !(m.Density > 0) {
		return fmt.Errorf("%w: %s density must be > 0, got %g", ErrInvalid, m.Name, m.Density)
	}
	if _, err := physics.ParseFormula(m.Formula); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, m.Name, err)
	}
	return nil
}

type Library struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the library under dataDir and seeds the defaults
// into a fresh database.
func Open(ctx context.Context, dataDir string) (*Library, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	lib := &Library{db: db, dbPath: dbPath}
	if err := lib.seed(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed defaults: %w", err)
	}
	return lib, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) Path() string {
	return l.dbPath
}

func (l *Library) seed(ctx context.Context) error {
	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, m := range Defaults {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO materials (name, formula, density, builtin, created_at) VALUES (?, ?, ?, 1, ?)`,
			m.Name, m.Formula, m.Density, now); err != nil {
			return fmt.Errorf("insert %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// List returns every material ordered by name.
func (l *Library) List(ctx context.Context) ([]Material, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name, formula, density, builtin FROM materials ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.Name, &m.Formula, &m.Density, &m.Builtin); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Get looks a material up by name, ignoring case.
func (l *Library) Get(ctx context.Context, name string) (Material, error) {
	var m Material
	err := l.db.QueryRowContext(ctx,
		`SELECT name, formula, density, builtin FROM materials WHERE name = ? COLLATE NOCASE`, name).
		Scan(&m.Name, &m.Formula, &m.Density, &m.Builtin)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Material{}, err
	}
	return m, nil
}

// Add stores a new user material. Existing names are rejected unless
// replace is set.
func (l *Library) Add(ctx context.Context, m Material, replace bool) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Formula = strings.TrimSpace(m.Formula)
	if err := m.Validate(); err != nil {
		return err
	}

	if _, err := l.Get(ctx, m.Name); err == nil {
		if !replace {
			return fmt.Errorf("%w: %q", ErrExists, m.Name)
		}
		_, err := l.db.ExecContext(ctx,
			`UPDATE materials SET formula = ?, density = ? WHERE name = ? COLLATE NOCASE`,
			m.Formula, m.Density, m.Name)
		return err
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO materials (name, formula, density, builtin, created_at) VALUES (?, ?, ?, 0, ?)`,
		m.Name, m.Formula, m.Density, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (l *Library) Remove(ctx context.Context, name string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM materials WHERE name = ? COLLATE NOCASE`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// Resolve turns a reference into a formula and density. A library name
// wins; otherwise ref is taken as a formula and density must be given.
func (l *Library) Resolve(ctx context.Context, ref string, density float64) (string, float64, error) {
	m, err := l.Get(ctx, ref)
	if err == nil {
		if density > 0 {
			return m.Formula, density, nil
		}
		return m.Formula, m.Density, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", 0, err
	}
	if _, perr := physics.ParseFormula(ref); perr != nil {
		return "", 0, fmt.Errorf("%q is neither a library material nor a formula: %w", ref, perr)
	}
	if density <= 0 {
		d, derr := physics.ElementDensity(ref)
		if derr != nil {
			return "", 0, fmt.Errorf("%w: no density for formula %q", ErrInvalid, ref)
		}
		density = d
	}
	return ref, density, nil
}

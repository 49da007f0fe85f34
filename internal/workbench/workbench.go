// Package workbench is an interactive terminal view that recomputes the
// beam-hardening estimate after every parameter edit.
package workbench

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/beamhard/internal/config"
	"github.com/san-kum/beamhard/internal/experiment"
	"github.com/san-kum/beamhard/internal/report"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// Runner computes an estimate for a scenario.
type Runner func(ctx context.Context, sc *config.Scenario) (*experiment.Estimate, error)

// resultMsg carries the outcome of the request tagged seq.
type resultMsg struct {
	seq int
	est *experiment.Estimate
	err error
}

type model struct {
	scenario *config.Scenario
	run      Runner
	ctx      context.Context
	reqCtx   context.Context
	cancel   context.CancelFunc

	cursor  int
	editing bool
	editBuf string

	seq       int
	computing bool
	est       *experiment.Estimate
	err       error
	angstroms bool

	width  int
	height int
}

func newModel(ctx context.Context, sc *config.Scenario, run Runner) model {
	reqCtx, cancel := context.WithCancel(ctx)
	return model{
		scenario:  sc.Clone(),
		run:       run,
		ctx:       ctx,
		reqCtx:    reqCtx,
		cancel:    cancel,
		seq:       1,
		computing: true,
		angstroms: sc.UseAngstroms(),
		width:     120,
		height:    40,
	}
}

// Run starts the workbench and blocks until the user quits.
func Run(ctx context.Context, sc *config.Scenario, run Runner) error {
	_, err := tea.NewProgram(newModel(ctx, sc, run), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return m.compute()
}

// compute runs the current scenario under the current sequence number.
func (m model) compute() tea.Cmd {
	seq, sc, run, ctx := m.seq, m.scenario.Clone(), m.run, m.reqCtx
	return func() tea.Msg {
		est, err := run(ctx, sc)
		return resultMsg{seq: seq, est: est, err: err}
	}
}

// recompute cancels any request in flight and starts a new one under the
// next sequence number.
func (m model) recompute() (model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.seq++
	m.computing = true
	m.reqCtx, m.cancel = context.WithCancel(m.ctx)
	return m, m.compute()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.computing = false
		m.err = msg.err
		if msg.err == nil {
			m.est = msg.est
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		return m.editKey(msg)
	}

	f := fields[m.cursor]
	switch msg.String() {
	case "q", "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = f.get(m.scenario)
	case "left", "h":
		return m.nudge(f, -1)
	case "right", "l":
		return m.nudge(f, 1)
	case "a":
		m.angstroms = !m.angstroms
	case "r":
		return m.recompute()
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		next := m.scenario.Clone()
		if err := fields[m.cursor].set(next, m.editBuf); err != nil {
			m.err = err
			return m, nil
		}
		m.scenario = next
		return m.recompute()
	case tea.KeyEsc:
		m.editing = false
		m.editBuf = ""
	case tea.KeyBackspace:
		if len(m.editBuf) > 0 {
			r := []rune(m.editBuf)
			m.editBuf = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.editBuf += " "
	case tea.KeyRunes:
		m.editBuf += string(msg.Runes)
	}
	return m, nil
}

func (m model) nudge(f field, dir float64) (model, tea.Cmd) {
	if !f.numeric {
		return m, nil
	}
	next := m.scenario.Clone()
	var v float64
	fmt.Sscanf(f.get(next), "%g", &v)
	if v == 0 {
		v = f.nudge * dir
	} else {
		v *= 1 + f.nudge*dir
	}
	if err := f.set(next, fmt.Sprintf("%g", v)); err != nil {
		m.err = err
		return m, nil
	}
	m.scenario = next
	return m.recompute()
}

func (m model) View() string {
	var left strings.Builder

	left.WriteString("\n" + cyan.Render("  b e a m h a r d") + "\n")
	left.WriteString(dimmer.Render("  "+strings.Repeat("─", 30)) + "\n\n")

	for i, f := range fields {
		val := f.get(m.scenario)
		if m.editing && i == m.cursor {
			val = m.editBuf + "▋"
		}
		if i == m.cursor {
			left.WriteString("  " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", f.name)) + magenta.Render(val) + "\n")
		} else {
			left.WriteString("    " + dim.Render(fmt.Sprintf("%-14s", f.name)) + dim.Render(val) + "\n")
		}
	}

	left.WriteString("\n")
	switch {
	case m.computing:
		left.WriteString("  " + yellow.Render("computing...") + "\n")
	case m.err != nil:
		left.WriteString("  " + red.Render(wrap(m.err.Error(), 40)) + "\n")
	}
	left.WriteString("\n" + dim.Render("  ↑↓ select  ←→ adjust  enter edit\n  a axis  r rerun  q quit") + "\n")

	right := ""
	if m.est != nil {
		size := report.PlotSize{Width: max(30, m.width-60), Height: max(6, m.height/3)}
		right = report.Panel.Render(report.RenderResult(m.est.Result)) + "\n" +
			report.SpectrumPlot(m.est.State, m.angstroms, size)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "   ", right)
}

func wrap(s string, width int) string {
	if len(s) <= width {
		return s
	}
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width] + "\n  ")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

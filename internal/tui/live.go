package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const (
	elevatorStep = 0.005 // rad per key press
	aileronStep  = 0.01
	throttleStep = 0.05
	historyLen   = 120
	frameRate    = 20
)

const rad2deg = 180 / math.Pi

// Runner is the part of a simulator the console drives. The simulator runs
// in its own goroutine; the console only reads its log and sends commands.
type Runner interface {
	Phase() sim.Phase
	Log() *sim.Log
	Pause()
	Resume()
	Reset()
	Stop()
}

type model struct {
	run      Runner
	controls *control.Shared
	title    string

	latest  sim.Sample
	have    bool
	phase   sim.Phase
	history []float64

	width  int
	height int
}

func newModel(run Runner, controls *control.Shared, title string) model {
	return model{
		run:      run,
		controls: controls,
		title:    title,
		history:  make([]float64, 0, historyLen),
		width:    80,
		height:   24,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tick()
	}
	return m, nil
}

// refresh pulls the latest sample from the log.
func (m *model) refresh() {
	m.phase = m.run.Phase()
	s, ok := m.run.Log().Latest()
	if !ok {
		return
	}
	if m.have && s.Step == m.latest.Step && s.Time == m.latest.Time {
		return
	}
	if m.have && s.Step < m.latest.Step {
		m.history = m.history[:0]
	}
	m.latest, m.have = s, true
	if len(m.history) == historyLen {
		m.history = append(m.history[:0], m.history[1:]...)
	}
	m.history = append(m.history, s.State[eom.Alt])
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.run.Stop()
		return m, tea.Quit
	case " ":
		if m.run.Phase() == sim.Paused {
			m.run.Resume()
		} else {
			m.run.Pause()
		}
	case "r":
		m.run.Reset()
	case "s":
		m.run.Stop()
	case "up", "k":
		m.nudge(func(v *control.Vector) { v.Elevator += elevatorStep })
	case "down", "j":
		m.nudge(func(v *control.Vector) { v.Elevator -= elevatorStep })
	case "left", "h":
		m.nudge(func(v *control.Vector) { v.Aileron -= aileronStep })
	case "right", "l":
		m.nudge(func(v *control.Vector) { v.Aileron += aileronStep })
	case "+", "=":
		m.nudge(func(v *control.Vector) { addThrottle(v, throttleStep) })
	case "-", "_":
		m.nudge(func(v *control.Vector) { addThrottle(v, -throttleStep) })
	case "c":
		m.nudge(func(v *control.Vector) { v.Aileron, v.Rudder = 0, 0 })
	}
	return m, nil
}

func (m model) nudge(fn func(v *control.Vector)) {
	if m.controls != nil {
		m.controls.Update(fn)
	}
}

func addThrottle(v *control.Vector, d float64) {
	for i := range v.Throttle {
		v.Throttle[i] += d
	}
}

func (m model) View() string {
	var b strings.Builder

	icon, status := green.Render("●"), green.Render("running")
	switch m.phase {
	case sim.Paused:
		icon, status = yellow.Render("○"), yellow.Render("paused")
	case sim.Stopped:
		icon, status = red.Render("■"), red.Render("stopped")
	case sim.Idle:
		icon, status = dim.Render("○"), dim.Render("idle")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", icon, cyan.Render(m.title), status))
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 44)) + "\n\n")

	if !m.have {
		b.WriteString(dim.Render("   waiting for first sample") + "\n")
		return b.String()
	}

	s := m.latest
	x, o := s.State, s.Outputs
	row := func(label, format string, v float64) {
		b.WriteString("   " + dim.Render(fmt.Sprintf("%-10s", label)) + white.Render(fmt.Sprintf(format, v)) + "\n")
	}
	row("time", "%8.2f s", s.Time)
	row("airspeed", "%8.1f ft/s", o.Airspeed)
	row("altitude", "%8.1f ft", x[eom.Alt])
	row("alpha", "%8.2f deg", o.Alpha*rad2deg)
	row("beta", "%8.2f deg", o.Beta*rad2deg)
	row("pitch", "%8.2f deg", x[eom.Theta]*rad2deg)
	row("bank", "%8.2f deg", x[eom.Phi]*rad2deg)
	row("heading", "%8.2f deg", x[eom.Psi]*rad2deg)
	row("nz", "%8.2f g", o.Nz)
	row("fuel", "%8.1f lb", x[eom.Fuel])

	if o.OnGround {
		b.WriteString("   " + yellow.Render("on ground") + "\n")
	}

	u := s.Controls
	b.WriteString(fmt.Sprintf("\n   %s %s  %s %s  %s %s\n",
		dim.Render("elev"), magenta.Render(fmt.Sprintf("%+.3f", u.Elevator)),
		dim.Render("ail"), magenta.Render(fmt.Sprintf("%+.3f", u.Aileron)),
		dim.Render("thr"), magenta.Render(fmt.Sprintf("%.2f", throttle(u)))))

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("\n   %s %s\n", dim.Render("alt"), cyan.Render(sparkline(m.history, 40))))
	}

	b.WriteString("\n" + dim.Render("   space pause  r reset  s stop  ↑↓ elevator  ←→ aileron  ± throttle  q quit") + "\n")
	return b.String()
}

func throttle(u control.Vector) float64 {
	if len(u.Throttle) == 0 {
		return 0
	}
	return u.Throttle[0]
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		idx = max(0, min(7, idx))
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// Run shows the live console until the user quits. Quitting stops the
// simulator.
func Run(run Runner, controls *control.Shared, title string) error {
	p := tea.NewProgram(newModel(run, controls, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

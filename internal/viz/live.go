package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
)

const (
	width           = 72
	height          = 22
	historyCapacity = 240
	gaugeWidth      = 20
)

type TickMsg time.Time

// Options configures the terminal host.
type Options struct {
	Title  string
	TickHz int
	Theme  string
}

// Model drives one simulator from Bubble Tea: ticks step it, mouse events
// drag its bodies and the view draws it on a braille canvas.
type Model struct {
	sim      *sim.Simulator
	opts     Options
	interval time.Duration
	canvas   *Canvas
	theme    Theme
	styles   styles

	running  bool
	showHelp bool

	spread []float64
	speed  []float64
	resets int
	kicks  int
	last   sim.Events

	// Calm gauge eased toward the calm timer.
	gauge     harmonica.Spring
	gaugePos  float64
	gaugeVel  float64
	gaugeGoal float64
}

func NewModel(s *sim.Simulator, opts Options) Model {
	if opts.TickHz <= 0 {
		opts.TickHz = 60
	}
	theme := GetTheme(opts.Theme)
	return Model{
		sim:      s,
		opts:     opts,
		interval: time.Second / time.Duration(opts.TickHz),
		canvas:   NewCanvas(width, height),
		theme:    theme,
		styles:   newStyles(theme),
		running:  true,
		spread:   make([]float64, 0, historyCapacity),
		speed:    make([]float64, 0, historyCapacity),
		gauge:    harmonica.NewSpring(harmonica.FPS(opts.TickHz), 8.0, 0.9),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.sim.Reset()
			m.spread = m.spread[:0]
			m.speed = m.speed[:0]
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// mouse translates terminal cells into pointer events. The canvas is the top
// left block of the view, inside its padding.
func (m *Model) mouse(msg tea.MouseMsg) {
	if m.showHelp {
		return
	}
	col, row := msg.X-canvasPadLeft, msg.Y-canvasPadTop
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
			return
		}
		m.sim.BeginDrag(m.canvas.CellToNDC(col, row))
	case msg.Action == tea.MouseActionMotion:
		if m.sim.Dragging() {
			m.sim.DragTo(m.canvas.CellToNDC(col, row))
		}
	case msg.Action == tea.MouseActionRelease:
		m.sim.EndDrag()
	}
}

func (m *Model) step() {
	ev := m.sim.Step()
	m.last = ev
	if ev.Has(sim.EventReset) {
		m.resets++
	}
	if ev.Has(sim.EventMergeKick) {
		m.kicks++
	}

	snap := m.sim.Snapshot()
	m.spread = pushCapped(m.spread, metrics.Spread(snap))
	peak := 0.0
	for _, b := range snap.Bodies {
		peak = max(peak, b.Vel.Len())
	}
	m.speed = pushCapped(m.speed, peak)

	threshold := m.sim.Params().CalmThreshold
	m.gaugeGoal = min(1, snap.CalmTimer/threshold)
	m.gaugePos, m.gaugeVel = m.gauge.Update(m.gaugePos, m.gaugeVel, m.gaugeGoal)
}

func pushCapped(xs []float64, v float64) []float64 {
	if len(xs) == historyCapacity {
		copy(xs, xs[1:])
		xs = xs[:len(xs)-1]
	}
	return append(xs, v)
}

func (m *Model) draw(snap sim.Snapshot) {
	m.canvas.Clear()
	m.canvas.DrawCross(sim.Vec{}, 3)
	for _, b := range snap.Bodies {
		m.canvas.DrawBody(snap.Shape, b.Pos)
	}
}

func (m Model) status(snap sim.Snapshot) string {
	st := m.styles
	switch {
	case !m.running:
		return st.busy.Render("PAUSED")
	case m.sim.Dragging():
		return st.alert.Render("DRAGGING")
	case m.last.Has(sim.EventMergeKick):
		return st.alert.Render("MERGE")
	case m.last.Has(sim.EventReset):
		return st.calm.Render("RESET")
	case snap.CalmTimer > 0:
		return st.calm.Render("SETTLING")
	}
	return st.busy.Render("RUNNING")
}

func flag(on bool) string {
	if on {
		return "●"
	}
	return "○"
}

func (m Model) View() string {
	snap := m.sim.Snapshot()
	m.draw(snap)
	st := m.styles

	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "blobsim"
	}
	s.WriteString(st.header.Render(strings.ToUpper(title)) + "\n")
	s.WriteString(m.status(snap) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Tick", fmt.Sprintf("%d", snap.Tick))
	row("Resets", fmt.Sprintf("%d", m.resets))
	row("Kicks", fmt.Sprintf("%d", m.kicks))
	row("Calm", Gauge(m.gaugePos, gaugeWidth))
	row("Armed", flag(snap.MergeKickArmed))
	row("Touched", flag(snap.UserInteracted))
	row("Speed", Sparkline(m.speed, gaugeWidth))

	if len(m.spread) > 1 {
		chart := asciigraph.Plot(m.spread, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Spread"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString("\n")
	for i, b := range snap.Bodies {
		mode := sim.Idle
		if b.Dragging {
			mode = sim.Dragging
		}
		s.WriteString(st.label.Render(fmt.Sprintf("#%d", i)) +
			st.value.Render(fmt.Sprintf("(%+.2f, %+.2f) %s", b.Pos[0], b.Pos[1], mode)) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause .:Step R:Reset\nT:Theme ?:Help Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  drag a body with the left mouse button
  space  pause/resume     .  step once while paused
  r      reset            t  cycle theme
  ?      toggle help      q  quit
`

// Run starts the interactive program and blocks until it exits.
func Run(s *sim.Simulator, opts Options) error {
	p := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return &sim.SetupError{Stage: "terminal", Err: err}
	}
	return nil
}

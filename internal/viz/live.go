package viz

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 45
	historyCapacity = 300
	zoomStep        = 1.25
)

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space  - Pause/Resume               ║
║  .      - Advance one frame          ║
║  R      - Rebuild the scene          ║
║  B      - Toggle broad-phase         ║
║  G      - Toggle gravity             ║
║  I / O  - Fewer / more iterations    ║
║  + / -  - Zoom in / out              ║
║  F      - Follow the focus entity    ║
║  C      - Recentre on the scene      ║
║  V      - Toggle GIF recording       ║
║  T      - Cycle themes               ║
║  ?      - Toggle this help           ║
║  Q      - Quit                       ║
╚══════════════════════════════════════╝
`

type TickMsg time.Time

// maxTickGap caps the time fed to the simulator for one tick after a stall.
const maxTickGap = 0.25

// Model drives a simulator one frame per tick and draws the world from
// above.
type Model struct {
	exp     *experiment.Experiment
	sim     *sim.Simulator
	frameDt float64
	// lastTick is the timestamp of the previous tick; zero before the first.
	lastTick time.Time

	canvas *Canvas
	camera Camera
	follow bool

	running   bool
	showHelp  bool
	theme     int
	styles    Styles
	recording bool
	recorder  *Recorder
	gifPath   string
	notice    string

	steps  int
	hz     []float64
	energy []float64
}

func NewModel(exp *experiment.Experiment) Model {
	m := Model{
		exp:      exp,
		sim:      exp.Simulator(),
		frameDt:  1 / exp.Config().FrameRate,
		canvas:   NewCanvas(width, height),
		follow:   exp.Scene().Focus != nil,
		running:  true,
		styles:   NewStyles(Themes[0]),
		recorder: &Recorder{},
		gifPath:  "rigidsim.gif",
		hz:       make([]float64, 0, historyCapacity),
		energy:   make([]float64, 0, historyCapacity),
	}
	m.recentre()
	return m
}

// SetTheme selects a theme by name.
func (m *Model) SetTheme(name string) {
	m.theme = ThemeIndex(name)
	m.styles = NewStyles(Themes[m.theme])
}

func (m *Model) SetGIFPath(path string) { m.gifPath = path }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.frameDt*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		dt := m.elapsed(time.Time(msg))
		if m.running {
			m.step(dt)
		}
		m.draw()
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.toggleRecording()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.step(m.frameDt)
			m.draw()
		}
	case "r":
		m.rebuild()
	case "b":
		m.sim.SetBroadPhase(!m.sim.BroadPhase())
	case "g":
		m.sim.UseGravity(!m.sim.GravityEnabled())
	case "i":
		m.sim.SetIterations(m.sim.Iterations() - 1)
	case "o":
		m.sim.SetIterations(m.sim.Iterations() + 1)
	case "+", "=":
		m.camera.Zoom(zoomStep)
	case "-", "_":
		m.camera.Zoom(1 / zoomStep)
	case "f":
		m.follow = !m.follow && m.exp.Scene().Focus != nil
	case "c":
		m.follow = false
		m.recentre()
	case "v":
		m.toggleRecording()
	case "t":
		m.SetTheme(Themes[(m.theme+1)%len(Themes)].Name)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// elapsed returns the seconds since the previous tick and records t. The
// first tick, and any tick whose timestamp did not advance, counts as one
// nominal frame.
func (m *Model) elapsed(t time.Time) float64 {
	dt := m.frameDt
	if !m.lastTick.IsZero() {
		if gap := t.Sub(m.lastTick).Seconds(); gap > 0 {
			dt = math.Min(gap, maxTickGap)
		}
	}
	m.lastTick = t
	return dt
}

func (m *Model) step(dt float64) {
	m.steps = m.sim.Update(dt)
	m.hz = pushHistory(m.hz, float64(m.sim.Hz()))
	m.energy = pushHistory(m.energy, metrics.Kinetic(m.sim.World().Entities()))
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// rebuild repopulates the world with a fresh copy of the scene.
func (m *Model) rebuild() {
	if err := m.exp.Rebuild(); err != nil {
		log.Printf("failed to rebuild scene %s: %v", m.exp.Scene().Name, err)
		m.notice = err.Error()
		return
	}
	m.hz = m.hz[:0]
	m.energy = m.energy[:0]
	m.steps = 0
	m.follow = m.exp.Scene().Focus != nil
	m.recentre()
	m.notice = "scene rebuilt"
}

func (m *Model) recentre() {
	w, h := m.canvas.Pixels()
	m.camera = Fit(m.sim.World().Entities(), w, h)
}

func (m *Model) resize(cols, rows int) {
	w := max(cols-statsWidth-6, 20)
	h := max(rows-3, 10)
	m.canvas = NewCanvas(w, h)
	if !m.follow {
		m.recentre()
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.recorder.Reset()
		m.notice = "recording"
		return
	}
	m.recording = false
	n := m.recorder.Len()
	if err := m.recorder.Save(m.gifPath); err != nil {
		log.Printf("failed to save recording: %v", err)
		m.notice = err.Error()
	} else if n > 0 {
		log.Printf("saved %d frames to %s", n, m.gifPath)
		m.notice = fmt.Sprintf("saved %s", m.gifPath)
	}
	m.recorder.Reset()
}

func (m *Model) draw() {
	m.canvas.Clear()
	if focus := m.exp.Scene().Focus; m.follow && focus != nil {
		p := focus.Transform().Position()
		m.camera.Center = mgl64.Vec2{p.X(), p.Z()}
	}
	m.camera.Draw(m.canvas, m.sim.World().Entities(), m.sim.World().Constraints())
}

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles
	sc := m.exp.Scene()
	canvasView := st.Canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(sc.Name)) + "\n")
	switch {
	case m.recording:
		s.WriteString(st.Record.Render(fmt.Sprintf("● REC %d", m.recorder.Len())))
	case m.running:
		s.WriteString(st.Running.Render("RUNNING"))
	default:
		s.WriteString(st.Paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Frame", fmt.Sprintf("%d", m.sim.FrameIndex()))
	row("Rate", fmt.Sprintf("%d Hz (%d steps)", m.sim.Hz(), m.steps))
	row("Bodies", fmt.Sprintf("%d", m.sim.World().Len()))
	row("Contacts", fmt.Sprintf("%d", m.sim.Contacts()))
	row("Iterations", fmt.Sprintf("%d", m.sim.Iterations()))
	row("Broad-phase", onOff(m.sim.BroadPhase()))
	row("Gravity", onOff(m.sim.GravityEnabled()))
	row("Zoom", fmt.Sprintf("%.2f", m.camera.Scale))
	if r := sc.Rules; r != nil && (r.Score > 0 || r.Finished) {
		score := fmt.Sprintf("%d", r.Score)
		if r.Finished {
			score += " finished"
		}
		row("Score", score)
	}

	if len(m.hz) > 1 {
		s.WriteString(st.Graph.Render(asciigraph.Plot(m.hz, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Step rate (Hz)"))) + "\n")
	}
	if len(m.energy) > 1 {
		s.WriteString(st.Graph.Render(asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))) + "\n")
	}
	if m.notice != "" {
		s.WriteString(st.Dim.Render(m.notice) + "\n")
	}
	s.WriteString(st.Help.Render(st.Separator(30) + "\nSP:Pause R:Rebuild Q:Quit\nB:Broad G:Gravity I/O:Iter\nT:Theme  V:Record  ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

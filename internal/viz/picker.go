package viz

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/scene"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// knob is one editable setting on the config screen.
type knob struct {
	name     string
	step     float64
	min, max float64
	get      func(*config.Config) float64
	set      func(*config.Config, float64)
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var knobs = []knob{
	{"count", 1, 0, 200,
		func(c *config.Config) float64 { return float64(c.Count) },
		func(c *config.Config, v float64) { c.Count = int(v) }},
	{"seed", 1, 0, 1 << 30,
		func(c *config.Config) float64 { return float64(c.Seed) },
		func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"frame_rate", 10, 10, 240,
		func(c *config.Config) float64 { return c.FrameRate },
		func(c *config.Config, v float64) { c.FrameRate = v }},
	{"ideal_hz", 10, 10, 480,
		func(c *config.Config) float64 { return float64(c.Physics.IdealHz) },
		func(c *config.Config, v float64) { c.Physics.IdealHz = int(v) }},
	{"iterations", 1, 1, 50,
		func(c *config.Config) float64 { return float64(c.Physics.Iterations) },
		func(c *config.Config, v float64) { c.Physics.Iterations = int(v) }},
	{"broad_phase", 1, 0, 1,
		func(c *config.Config) float64 { return flag(c.Physics.UseBroadPhase) },
		func(c *config.Config, v float64) { c.Physics.UseBroadPhase = v >= 0.5 }},
	{"gravity", 1, 0, 1,
		func(c *config.Config) float64 { return flag(c.Physics.UseGravity) },
		func(c *config.Config, v float64) { c.Physics.UseGravity = v >= 0.5 }},
}

// App picks a scene, tunes a few settings and then hands over to the live
// viewer.
type App struct {
	state   int
	cursor  int
	scenes  []string
	cfg     *config.Config
	knob    int
	editing bool
	editBuf string
	err     string
	styles  Styles
	live    Model
}

func NewApp(base *config.Config) *App {
	if base == nil {
		base = config.DefaultConfig()
	}
	return &App{
		state:  stateMenu,
		scenes: scene.Names(),
		cfg:    base.Clone(),
		styles: NewStyles(Themes[0]),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		live, cmd := a.live.Update(msg)
		a.live = live.(Model)
		return a, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(msg)
		case stateConfig:
			return a.configKey(msg)
		}
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.scenes)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.cfg.Scene = a.scenes[a.cursor]
		a.state, a.knob, a.err = stateConfig, 0, ""
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := knobs[a.knob]
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				a.adjust(k, v)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				a.editBuf += s
			}
		}
		return a, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.knob > 0 {
			a.knob--
		}
	case "down", "j":
		if a.knob < len(knobs)-1 {
			a.knob++
		}
	case "left", "h":
		a.adjust(k, k.get(a.cfg)-k.step)
	case "right", "l":
		a.adjust(k, k.get(a.cfg)+k.step)
	case "enter", " ":
		a.editing, a.editBuf = true, strconv.FormatFloat(k.get(a.cfg), 'f', -1, 64)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a *App) adjust(k knob, v float64) {
	k.set(a.cfg, max(k.min, min(k.max, v)))
}

func (a App) start() (tea.Model, tea.Cmd) {
	if a.cfg.Physics.MinHz > a.cfg.Physics.IdealHz {
		a.cfg.Physics.MinHz = a.cfg.Physics.IdealHz
	}
	cfg := a.cfg.Clone()
	exp, err := experiment.New(cfg)
	if err != nil {
		log.Printf("failed to start %s: %v", cfg.Scene, err)
		a.err = err.Error()
		return a, nil
	}
	a.live = NewModel(exp)
	a.state = stateSim
	return a, a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return ""
}

func (a App) viewMenu() string {
	st := a.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.Header.Render("RIGIDSIM") + "\n    " + st.Dim.Render("rigid body sandbox") + "\n    " + st.Separator(25) + "\n\n")
	for i, name := range a.scenes {
		desc := scene.Describe(name)
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.Cursor.Render("▸"), st.Value.Bold(true).Render(fmt.Sprintf("%-8s", name)), st.Running.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.Dim.Render(fmt.Sprintf("%-8s", name)), st.Dim.Render(desc)))
		}
	}
	b.WriteString("\n    " + st.Help.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	st := a.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.Header.Render(strings.ToUpper(a.cfg.Scene)) + "\n    " + st.Dim.Render(scene.Describe(a.cfg.Scene)) + "\n    " + st.Separator(25) + "\n\n")
	for i, k := range knobs {
		v := k.get(a.cfg)
		val := fmt.Sprintf("%8g", v)
		if a.editing && i == a.knob {
			val = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		bar := ProgressBar((v-k.min)/(k.max-k.min), 10)
		if i == a.knob {
			b.WriteString(fmt.Sprintf("    %s %s %s %s\n", st.Cursor.Render("▸"), st.Value.Bold(true).Render(fmt.Sprintf("%-12s", k.name)), st.Cursor.Render(val), st.Running.Render(bar)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s %s\n", st.Dim.Render(fmt.Sprintf("%-12s", k.name)), st.Dim.Render(val), st.Dim.Render(bar)))
		}
	}
	if a.err != "" {
		b.WriteString("\n    " + st.Record.Render(a.err) + "\n")
	}
	b.WriteString("\n    " + st.Help.Render("j/k select  h/l adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

// RunInteractive opens the scene picker full screen.
func RunInteractive(base *config.Config) error {
	_, err := tea.NewProgram(NewApp(base), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live viewer on an already built experiment.
func RunLive(exp *experiment.Experiment, theme, gifPath string) error {
	m := NewModel(exp)
	m.SetTheme(theme)
	m.SetGIFPath(gifPath)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bubblesim/internal/config"
	"github.com/san-kum/bubblesim/internal/scene"
)

const (
	stateMenu = iota
	stateConfig
	stateLive
)

// configFields are the numeric knobs editable on the config screen, with
// their h/l adjustment step.
var configFields = []struct {
	name string
	step float64
}{
	{"count", 5},
	{"width", 40},
	{"height", 40},
	{"fps", 5},
	{"seed", 1},
}

// App is the launcher flow: pick a preset, tweak the numbers, run the live
// view.
type App struct {
	state  int
	cursor int
	names  []string

	cfg         *config.Config
	fieldCursor int
	editing     bool
	editBuf     string

	live Model
	err  error
}

func NewApp() *App {
	return &App{
		state: stateMenu,
		names: config.ListPresets(),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	default:
		if a.state == stateLive {
			newLive, cmd := a.live.Update(msg)
			a.live = newLive.(Model)
			return a, cmd
		}
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMenu:
		return a.menuKey(msg)
	case stateConfig:
		return a.configKey(msg)
	case stateLive:
		newLive, cmd := a.live.Update(msg)
		a.live = newLive.(Model)
		return a, cmd
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
		if a.cursor < len(a.names)-1 {
			a.cursor++
		}
	case "enter", " ":
		// Copy the preset so edits never leak back into the shared table.
		cfg := *config.GetPreset(a.names[a.cursor])
		a.cfg = &cfg
		a.state, a.fieldCursor = stateConfig, 0
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(a.editBuf, "%f", &val)
			a.setField(configFields[a.fieldCursor].name, val)
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					a.editBuf += string(c)
				}
			}
		}
		return a, nil
	}
	switch msg.String() {
	case "q", "esc":
		a.state, a.err = stateMenu, nil
	case "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.fieldCursor > 0 {
			a.fieldCursor--
		}
	case "down", "j":
		if a.fieldCursor < len(configFields)-1 {
			a.fieldCursor++
		}
	case "enter":
		a.editing = true
		a.editBuf = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", a.fieldValue(configFields[a.fieldCursor].name)), "0"), ".")
	case "left", "h":
		f := configFields[a.fieldCursor]
		a.setField(f.name, a.fieldValue(f.name)-f.step)
	case "right", "l":
		f := configFields[a.fieldCursor]
		a.setField(f.name, a.fieldValue(f.name)+f.step)
	case "s":
		cmd := a.start()
		return a, cmd
	}
	return a, nil
}

func (a *App) fieldValue(name string) float64 {
	switch name {
	case "count":
		return float64(a.cfg.Count)
	case "width":
		return a.cfg.Width
	case "height":
		return a.cfg.Height
	case "fps":
		return float64(a.cfg.FPS)
	case "seed":
		return float64(a.cfg.Seed)
	}
	return 0
}

func (a *App) setField(name string, v float64) {
	switch name {
	case "count":
		if v < 1 {
			v = 1
		}
		a.cfg.Count = int(v)
	case "width":
		if v < 100 {
			v = 100
		}
		a.cfg.Width = v
	case "height":
		if v < 100 {
			v = 100
		}
		a.cfg.Height = v
	case "fps":
		if v < 1 {
			v = 1
		}
		a.cfg.FPS = int(v)
	case "seed":
		a.cfg.Seed = int64(v)
	}
}

func (a *App) start() tea.Cmd {
	src := a.cfg.GetSource()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	batch, err := src.Instruments(ctx)
	if err != nil {
		a.err = err
		return nil
	}
	sc := scene.New(a.cfg.GetOptions())
	a.cfg.ApplyMotion(sc.Stepper())
	a.live = NewModel(sc, src, batch, a.cfg.FPS)
	a.state, a.err = stateLive, nil
	return a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	case stateLive:
		return a.live.View()
	}
	return ""
}

func (a App) viewMenu() string {
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	sel := lipgloss.NewStyle().Foreground(CurrentTheme.Title).Bold(true)
	desc := lipgloss.NewStyle().Foreground(CurrentTheme.Text)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("BUBBLESIM") + "\n    " + sub.Render("market bubble visualizer") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.names {
		info := config.PresetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", h.Render("▸"), sel.Render(fmt.Sprintf("%-10s", name)), desc.Render(info)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-10s", name)), sub.Render(info)))
		}
	}
	b.WriteString("\n    " + h.Render("j/k") + sub.Render(" navigate  ") + h.Render("enter") + sub.Render(" select  ") + h.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	sel := lipgloss.NewStyle().Foreground(CurrentTheme.Title).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render(strings.ToUpper(a.names[a.cursor])) + "\n    " + sub.Render(config.PresetInfo[a.names[a.cursor]]) + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, f := range configFields {
		valStr := fmt.Sprintf("%8.0f", a.fieldValue(f.name))
		if a.editing && i == a.fieldCursor {
			valStr = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		if i == a.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", h.Render("▸"), sel.Render(fmt.Sprintf("%-8s", f.name)), sel.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", sub.Render(fmt.Sprintf("%-8s", f.name)), sub.Render(valStr)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + recordingStyle().Render("source error: "+a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + h.Render("j/k") + sub.Render(" select  ") + h.Render("h/l") + sub.Render(" adjust  ") + h.Render("enter") + sub.Render(" type  ") + h.Render("s") + sub.Render(" start  ") + h.Render("esc") + sub.Render(" back") + "\n")
	return b.String()
}

// RunInteractive starts the launcher flow.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen()).Run()
	return err
}

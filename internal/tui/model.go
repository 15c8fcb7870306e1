package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/session"
)

type TickMsg time.Time

type keyMap struct {
	Next     key.Binding
	Previous key.Binding
	ShowAll  key.Binding
	Clear    key.Binding
	Reset    key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.ShowAll, k.Clear, k.Reset, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next hop")),
	Previous: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous hop")),
	ShowAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "show all cables")),
	Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear cables")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset view")),
	Reload:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load run")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ViewerModel drives a session from the keyboard.
type ViewerModel struct {
	session  *session.Session
	run      models.Run
	tick     time.Duration
	snapshot session.Snapshot
	help     help.Model
	ticking  bool
}

// NewViewerModel starts idling; the run is loaded with the "l" key.
func NewViewerModel(s *session.Session, run models.Run, tick time.Duration) ViewerModel {
	return ViewerModel{
		session:  s,
		run:      run,
		tick:     tick,
		snapshot: s.State(),
		help:     help.New(),
		ticking:  tick > 0,
	}
}

func (m ViewerModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m ViewerModel) tickCmd() tea.Cmd {
	if m.tick <= 0 {
		return nil
	}
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

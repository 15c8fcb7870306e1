package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sagoresarker/cabletrace/internal/navigator"
)

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			m.snapshot = m.session.Advance(navigator.Next)
		case key.Matches(msg, keys.Previous):
			m.snapshot = m.session.Advance(navigator.Previous)
		case key.Matches(msg, keys.ShowAll):
			m.snapshot = m.session.ShowAllCables()
		case key.Matches(msg, keys.Clear):
			m.snapshot = m.session.ClearCableFilter()
		case key.Matches(msg, keys.Reload):
			m.snapshot = m.session.Load(m.run)
		case key.Matches(msg, keys.Reset):
			m.snapshot = m.session.Reset()
			// ticks stop once navigation starts; restart them
			if !m.ticking && m.tick > 0 {
				m.ticking = true
				return m, m.tickCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case TickMsg:
		if !m.session.Tick() {
			// stay quiet until the view is reset
			m.ticking = false
			m.snapshot = m.session.State()
			return m, nil
		}
		m.snapshot = m.session.State()
		return m, m.tickCmd()
	}

	return m, nil
}

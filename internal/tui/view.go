package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sagoresarker/cabletrace/internal/surface"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	cableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m ViewerModel) View() string {
	snap := m.snapshot

	header := "cabletrace"
	if m.run.Target != "" {
		header += " - " + m.run.Target
	}
	title := titleStyle.Render(header)

	info := "Waiting for a run... press l to load"
	if snap.Active {
		info = snap.Summary
	}
	infoBox := infoStyle.Render(info)

	runBox := infoStyle.Render(m.run.Summary())

	cam := snap.Camera
	camera := fmt.Sprintf("Camera: %.4f, %.4f\nZoom: %.1f  Pitch: %.1f", cam.Center.Lat, cam.Center.Lon, cam.Zoom, cam.Pitch)
	if snap.Idling {
		camera += "\n" + dimStyle.Render("idle rotation")
	}
	camBox := infoStyle.Render(camera)

	cables := dimStyle.Render("none")
	if len(snap.VisibleCables) > 0 {
		cables = cableStyle.Render(strings.Join(snap.VisibleCables, ", "))
	}
	overlayBox := infoStyle.Render(fmt.Sprintf("Markers: %d\nCables: %s\nLast: %s",
		len(snap.Markers), cables, lastCommand(snap.Commands)))

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, infoBox, runBox)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, camBox, overlayBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, row2)

	return body + "\n" + m.help.View(keys)
}

func lastCommand(cmds []surface.Command) string {
	if len(cmds) == 0 {
		return "-"
	}
	c := cmds[len(cmds)-1]
	switch c.Op {
	case surface.OpAnimateTo, surface.OpSetCenter:
		if c.Center != nil {
			return fmt.Sprintf("%s (%.4f, %.4f)", c.Op, c.Center.Lat, c.Center.Lon)
		}
	case surface.OpSetFilter:
		if c.Filter != nil {
			return fmt.Sprintf("%s %s: %s", c.Op, c.Layer, c.Filter)
		}
	}
	return string(c.Op)
}

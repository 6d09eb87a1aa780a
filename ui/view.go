package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var focusTips = []string{
	"Use ambient sounds to mask distracting background noise",
	"Keep the volume at a comfortable, non-intrusive level",
	"Experiment with different sounds to find what works best for you",
	"Take regular breaks to prevent listening fatigue",
}

// View renders the player
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.contentWidth()

	sections := []string{
		titleStyle.Render("Focus Sounds"),
		m.viewVolume(width),
		m.viewGrid(width),
	}
	if seek := m.viewSeek(); seek != "" {
		sections = append(sections, seek)
	}
	sections = append(sections, m.viewTransport(width))
	if m.status != "" {
		sections = append(sections, errorStyle.Render(m.status))
	}
	if m.showTips {
		sections = append(sections, m.viewTips(width))
	}
	sections = append(sections, m.help.View(m.keys))

	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewVolume(width int) string {
	volume := m.player.State().Volume

	icon := "🔊"
	if volume == 0 {
		icon = "🔇"
	}

	bar := m.zones.Mark(zoneVolume, m.volumeBar.ViewAs(volume))
	row := fmt.Sprintf("%s %s %3.0f%%", icon, bar, volume*100)

	return panelStyle.Width(width - 2).Render(row)
}

func (m Model) viewGrid(width int) string {
	entries := m.player.Catalog().Entries()
	state := m.player.State()
	tileWidth := max((width-2*(columns-1))/columns-2, 12)

	var rows []string
	for start := 0; start < len(entries); start += columns {
		var tiles []string
		for i := start; i < min(start+columns, len(entries)); i++ {
			e := entries[i]

			indicator := "▶ play"
			style := tileStyle
			switch {
			case state.Active && state.ActiveIndex == i:
				indicator = "⏸ pause"
				style = activeTileStyle
			case state.Unavailable == i:
				indicator = "✕ unavailable"
			}
			if i == m.cursor {
				style = style.BorderStyle(lipgloss.ThickBorder()).BorderForeground(cursorBorderColor)
			}

			content := lipgloss.JoinVertical(lipgloss.Center, e.Icon, e.Name, indicator)
			tile := style.Width(tileWidth).Render(content)
			if len(tiles) > 0 {
				tiles = append(tiles, "  ")
			}
			tiles = append(tiles, m.zones.Mark(tileZone(i), tile))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// viewSeek renders the seek bar, which only exists while a sound plays
func (m Model) viewSeek() string {
	state := m.player.State()
	if !state.Active {
		return ""
	}

	bar := m.zones.Mark(zoneSeek, m.seekBar.ViewAs(state.Progress/100))
	return fmt.Sprintf("\n%s %s / %s", bar, formatDuration(state.Elapsed), formatDuration(state.Total))
}

func (m Model) viewTransport(width int) string {
	looping := m.player.State().Looping

	loopStyle := buttonStyle
	if looping {
		loopStyle = activeButtonStyle
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		m.zones.Mark(zonePrev, buttonStyle.Render("⏮ prev")),
		"  ",
		m.zones.Mark(zoneLoop, loopStyle.Render("🔁 loop")),
		"  ",
		m.zones.Mark(zoneNext, buttonStyle.Render("⏭ next")),
	)

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons)
}

func (m Model) viewTips(width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Focus Tips"))
	for _, tip := range focusTips {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("• " + tip))
	}
	return panelStyle.Width(width - 2).Render(b.String())
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

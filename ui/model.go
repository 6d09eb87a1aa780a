// Package ui is the terminal front end of the player: a grid of sound tiles
// with volume, seek and transport controls.
package ui

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"ambient/playback"
	"ambient/player"
)

const (
	columns      = 3
	seekStep     = 5.0
	defaultWidth = 80
	minWidth     = 40

	zoneVolume = "volume"
	zoneSeek   = "seek"
	zonePrev   = "prev"
	zoneLoop   = "loop"
	zoneNext   = "next"
)

func tileZone(i int) string {
	return fmt.Sprintf("tile-%d", i)
}

// DispatchMsg carries a playback callback onto the UI event loop
type DispatchMsg struct {
	fn func()
}

// Dispatcher adapts a program's Send into a playback.Dispatcher, so time
// updates are applied inside Update
func Dispatcher(send func(tea.Msg)) playback.Dispatcher {
	return func(fn func()) {
		send(DispatchMsg{fn: fn})
	}
}

type selectMsg struct {
	index int
}

// Option configures a Model
type Option func(*Model)

// WithVolumeStep sets how much the volume keys change the volume
func WithVolumeStep(step float64) Option {
	return func(m *Model) {
		if step > 0 {
			m.volumeStep = step
		}
	}
}

// WithTips shows or hides the focus tips
func WithTips(show bool) Option {
	return func(m *Model) { m.showTips = show }
}

// WithStartSound plays the sound at index once the program starts
func WithStartSound(index int) Option {
	return func(m *Model) { m.startSound = index }
}

// Model holds the player view state
type Model struct {
	player     *player.Player
	keys       KeyMap
	help       help.Model
	volumeBar  progress.Model
	seekBar    progress.Model
	zones      *zone.Manager
	cursor     int
	width      int
	height     int
	showTips   bool
	volumeStep float64
	lastVolume float64
	startSound int
	status     string
	quitting   bool
}

// New creates the view for p
func New(p *player.Player, opts ...Option) Model {
	m := Model{
		player:     p,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		volumeBar:  progress.New(progress.WithSolidFill(string(accentColor.Dark)), progress.WithoutPercentage()),
		seekBar:    progress.New(progress.WithSolidFill(string(accentColor.Dark)), progress.WithoutPercentage()),
		zones:      zone.New(),
		showTips:   true,
		volumeStep: 0.05,
		startSound: -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if s := p.State(); s.Active {
		m.cursor = s.ActiveIndex
	}
	return m.resize()
}

// Init starts the configured sound, if any
func (m Model) Init() tea.Cmd {
	if m.startSound < 0 {
		return nil
	}
	index := m.startSound
	return func() tea.Msg { return selectMsg{index: index} }
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.resize()

	case DispatchMsg:
		if msg.fn != nil {
			msg.fn()
		}

	case selectMsg:
		m.cursor = clampIndex(msg.index, m.player.Catalog().Len())
		m.selectSound(msg.index)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// Player returns the player driven by the view
func (m Model) Player() *player.Player {
	return m.player
}

// Cursor returns the highlighted tile
func (m Model) Cursor() int {
	return m.cursor
}

// Status returns the last error shown to the user
func (m Model) Status() string {
	return m.status
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m.resize()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.player.Catalog().Len()
	state := m.player.State()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor-columns >= 0 {
			m.cursor -= columns
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+columns < n {
			m.cursor += columns
		}

	case key.Matches(msg, m.keys.Select):
		m.selectSound(m.cursor)
	case key.Matches(msg, m.keys.Direct):
		index := int(msg.String()[0] - '1')
		if index < n {
			m.cursor = index
			m.selectSound(index)
		}

	case key.Matches(msg, m.keys.Next):
		m.report(m.player.Next())
		m.followActive()
	case key.Matches(msg, m.keys.Prev):
		m.report(m.player.Previous())
		m.followActive()

	case key.Matches(msg, m.keys.Loop):
		m.player.ToggleLoop()

	case key.Matches(msg, m.keys.VolumeUp):
		m.setVolume(state.Volume + m.volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.setVolume(state.Volume - m.volumeStep)
	case key.Matches(msg, m.keys.Mute):
		if state.Volume > 0 {
			m.lastVolume = state.Volume
			m.setVolume(0)
		} else {
			restore := m.lastVolume
			if restore <= 0 {
				restore = m.volumeStep
			}
			m.setVolume(restore)
		}

	case key.Matches(msg, m.keys.SeekBack):
		m.player.Seek(state.Progress - seekStep)
	case key.Matches(msg, m.keys.SeekForward):
		m.player.Seek(state.Progress + seekStep)

	case key.Matches(msg, m.keys.Tips):
		m.showTips = !m.showTips
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	for i := 0; i < m.player.Catalog().Len(); i++ {
		if _, ok := m.hit(tileZone(i), msg); ok {
			m.cursor = i
			m.selectSound(i)
			return m, nil
		}
	}

	if z, ok := m.hit(zoneSeek, msg); ok {
		x, _ := z.Pos(msg)
		m.player.SeekPointer(x, 0, span(z))
		return m, nil
	}

	if z, ok := m.hit(zoneVolume, msg); ok {
		x, _ := z.Pos(msg)
		if width := span(z); width > 0 {
			m.setVolume(float64(x) / float64(width))
		}
		return m, nil
	}

	switch {
	case m.hitAny(zonePrev, msg):
		m.report(m.player.Previous())
		m.followActive()
	case m.hitAny(zoneLoop, msg):
		m.player.ToggleLoop()
	case m.hitAny(zoneNext, msg):
		m.report(m.player.Next())
		m.followActive()
	}

	return m, nil
}

func (m Model) hit(id string, msg tea.MouseMsg) (*zone.ZoneInfo, bool) {
	z := m.zones.Get(id)
	if z == nil || !z.InBounds(msg) {
		return nil, false
	}
	return z, true
}

// span is the distance between the first and last column of a bar, so both
// ends of the bar map to 0 and 1
func span(z *zone.ZoneInfo) int {
	return z.EndX - z.StartX
}

func (m Model) hitAny(id string, msg tea.MouseMsg) bool {
	_, ok := m.hit(id, msg)
	return ok
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if err := m.player.Close(); err != nil {
		m.status = err.Error()
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) selectSound(index int) {
	m.report(m.player.Select(index))
}

func (m *Model) setVolume(v float64) {
	m.player.SetVolume(math.Round(v*100) / 100)
}

func (m *Model) followActive() {
	if s := m.player.State(); s.Active {
		m.cursor = s.ActiveIndex
	}
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, player.ErrSoundUnavailable):
		name := "Sound"
		if e, ok := m.player.Catalog().At(m.player.State().Unavailable); ok {
			name = e.Name
		}
		m.status = fmt.Sprintf("%s is unavailable", name)
	default:
		m.status = err.Error()
	}
}

func (m Model) resize() Model {
	width := m.contentWidth()
	m.volumeBar.Width = max(width-16, 10)
	m.seekBar.Width = max(width-16, 10)
	m.help.Width = width
	return m
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return max(m.width, minWidth)
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

// Package player implements the sound picker: at most one catalog sound plays
// at a time, and selecting the playing sound again stops it.
//
// A Player is not safe for concurrent use. All calls, including time-update
// callbacks delivered by the backend, must come from the same goroutine.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"ambient/catalog"
	"ambient/playback"
)

var (
	ErrInvalidIndex     = errors.New("player: sound index out of range")
	ErrSoundUnavailable = errors.New("player: sound unavailable")
	ErrClosed           = errors.New("player: closed")
)

const (
	DefaultVolume  = 0.5
	DefaultLooping = true

	none = -1
)

// State is a snapshot of the player
type State struct {
	Active      bool
	ActiveIndex int
	Volume      float64
	Looping     bool
	// Progress is the elapsed share of the active sound, 0 to 100
	Progress float64
	// Elapsed and Total come from the last time update or seek
	Elapsed time.Duration
	Total   time.Duration
	// Unavailable is the index of the last sound that failed to start, or -1
	Unavailable    int
	UnavailableErr error
}

// Option configures a Player
type Option func(*Player)

// WithVolume sets the initial volume
func WithVolume(v float64) Option {
	return func(p *Player) {
		if !math.IsNaN(v) {
			p.volume = clamp(v, 0, 1)
		}
	}
}

// WithLooping sets the initial loop flag
func WithLooping(loop bool) Option {
	return func(p *Player) { p.looping = loop }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// Player owns the catalog and the single live playback handle
type Player struct {
	catalog *catalog.Catalog
	backend playback.Backend
	logger  *slog.Logger

	active   int
	volume   float64
	looping  bool
	progress float64
	elapsed  time.Duration
	total    time.Duration

	handle      playback.Handle
	unsubscribe func()

	unavailable    int
	unavailableErr error

	closed bool
}

// New creates an idle player
func New(cat *catalog.Catalog, backend playback.Backend, opts ...Option) *Player {
	p := &Player{
		catalog:     cat,
		backend:     backend,
		logger:      slog.With("component", "player"),
		active:      none,
		volume:      DefaultVolume,
		looping:     DefaultLooping,
		unavailable: none,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the sounds the player chooses from
func (p *Player) Catalog() *catalog.Catalog {
	return p.catalog
}

// State returns a snapshot of the player
func (p *Player) State() State {
	return State{
		Active:         p.handle != nil,
		ActiveIndex:    p.active,
		Volume:         p.volume,
		Looping:        p.looping,
		Progress:       p.progress,
		Elapsed:        p.elapsed,
		Total:          p.total,
		Unavailable:    p.unavailable,
		UnavailableErr: p.unavailableErr,
	}
}

// Active returns the playing sound
func (p *Player) Active() (catalog.SoundEntry, bool) {
	if p.handle == nil {
		return catalog.SoundEntry{}, false
	}
	return p.catalog.At(p.active)
}

// Select stops whatever is playing and starts the sound at index, unless that
// sound was the one playing, in which case the player stays idle.
func (p *Player) Select(index int) error {
	if p.closed {
		return ErrClosed
	}

	entry, ok := p.catalog.At(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	previous := p.active
	p.release()

	if previous == index {
		p.logger.Info("Stopped sound", slog.String("sound", entry.ID))
		return nil
	}

	return p.start(index, entry)
}

// Next plays the sound after the active one, wrapping around. It does nothing while idle.
func (p *Player) Next() error {
	return p.step(1)
}

// Previous plays the sound before the active one, wrapping around. It does nothing while idle.
func (p *Player) Previous() error {
	return p.step(-1)
}

func (p *Player) step(delta int) error {
	if p.closed {
		return ErrClosed
	}
	if p.handle == nil {
		return nil
	}
	n := p.catalog.Len()
	return p.Select(((p.active+delta)%n + n) % n)
}

// ToggleLoop flips looping, updating the playing sound in place
func (p *Player) ToggleLoop() {
	if p.closed {
		return
	}
	p.looping = !p.looping
	if p.handle != nil {
		p.handle.SetLooping(p.looping)
	}
	p.logger.Debug("Loop toggled", slog.Bool("looping", p.looping))
}

// SetVolume stores v, clamped to [0, 1], and applies it to the playing sound.
// NaN is ignored.
func (p *Player) SetVolume(v float64) {
	if p.closed || math.IsNaN(v) {
		return
	}
	p.volume = clamp(v, 0, 1)
	if p.handle != nil {
		p.handle.SetVolume(p.volume)
	}
}

// Seek moves the playing sound to percent of its duration. It does nothing
// while idle, while the duration is unknown, or when percent is NaN.
func (p *Player) Seek(percent float64) {
	if p.closed || p.handle == nil || math.IsNaN(percent) {
		return
	}
	total := p.handle.Duration()
	if total <= 0 {
		return
	}

	percent = clamp(percent, 0, 100)
	pos := time.Duration(percent / 100 * float64(total))
	p.handle.SetPosition(pos)
	p.progress = percent
	p.elapsed = pos
	p.total = total
}

// SeekPointer seeks to the share of a track of the given width at which x lies
func (p *Player) SeekPointer(x, left, width int) {
	if width <= 0 {
		return
	}
	p.Seek(float64(x-left) / float64(width) * 100)
}

// HandleTimeUpdate recomputes progress for the playing sound
func (p *Player) HandleTimeUpdate(current, total time.Duration) {
	if p.closed || p.handle == nil {
		return
	}
	p.observe(p.handle, current, total)
}

func (p *Player) observe(h playback.Handle, current, total time.Duration) {
	if h != p.handle {
		return
	}
	if total <= 0 {
		return
	}
	p.progress = clamp(float64(current)/float64(total)*100, 0, 100)
	p.elapsed = current
	p.total = total
}

// Close stops the playing sound. Later calls do nothing.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.release()
	p.closed = true
	return nil
}

func (p *Player) start(index int, entry catalog.SoundEntry) error {
	h, err := p.backend.Create(entry.Source)
	if err != nil {
		return p.fail(index, entry, err)
	}

	h.SetLooping(p.looping)
	h.SetVolume(p.volume)
	if err := h.Play(); err != nil {
		if cerr := h.Close(); cerr != nil {
			p.logger.Debug("Failed to close unplayable handle", slog.Any("error", cerr))
		}
		return p.fail(index, entry, err)
	}

	p.handle = h
	p.active = index
	p.progress = 0
	p.elapsed = 0
	p.total = h.Duration()
	p.unavailable = none
	p.unavailableErr = nil
	p.unsubscribe = h.OnTimeUpdate(func(current, total time.Duration) {
		p.observe(h, current, total)
	})

	p.logger.Info("Playing sound",
		slog.String("sound", entry.ID),
		slog.String("source", entry.Source),
		slog.Float64("volume", p.volume),
		slog.Bool("looping", p.looping))

	return nil
}

func (p *Player) fail(index int, entry catalog.SoundEntry, err error) error {
	p.unavailable = index
	p.unavailableErr = err

	p.logger.Warn("Sound unavailable",
		slog.String("sound", entry.ID),
		slog.String("source", entry.Source),
		slog.Any("error", err))

	return fmt.Errorf("%w: %s: %w", ErrSoundUnavailable, entry.ID, err)
}

// release tears down the live handle, if any, and returns to idle
func (p *Player) release() {
	if p.handle == nil {
		return
	}

	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}

	p.handle.Pause()
	p.handle.SetPosition(0)
	if err := p.handle.Close(); err != nil {
		p.logger.Debug("Failed to close handle", slog.Any("error", err))
	}

	p.handle = nil
	p.active = none
	p.progress = 0
	p.elapsed = 0
	p.total = 0
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

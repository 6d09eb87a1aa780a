// Package playbacktest provides an in-memory playback backend that records
// every call made on its handles.
package playbacktest

import (
	"fmt"
	"time"

	"ambient/playback"
)

// Backend is a fake playback.Backend. It is not safe for concurrent use.
type Backend struct {
	// Durations maps sources to the duration their handles report
	Durations map[string]time.Duration
	// CreateErr maps sources to an error returned by Create
	CreateErr map[string]error
	// PlayErr maps sources to an error returned by Play
	PlayErr map[string]error

	Handles []*Handle
}

var _ playback.Backend = (*Backend)(nil)

// NewBackend returns a backend whose handles last one minute
func NewBackend() *Backend {
	return &Backend{
		Durations: map[string]time.Duration{},
		CreateErr: map[string]error{},
		PlayErr:   map[string]error{},
	}
}

func (b *Backend) Create(source string) (playback.Handle, error) {
	if err := b.CreateErr[source]; err != nil {
		return nil, err
	}

	d, ok := b.Durations[source]
	if !ok {
		d = time.Minute
	}

	h := &Handle{
		Source:   source,
		Dur:      d,
		playErr:  b.PlayErr[source],
		subs:     map[int]func(current, total time.Duration){},
		sequence: len(b.Handles),
	}
	b.Handles = append(b.Handles, h)
	return h, nil
}

// Live returns handles that have not been closed
func (b *Backend) Live() []*Handle {
	var out []*Handle
	for _, h := range b.Handles {
		if !h.Closed {
			out = append(out, h)
		}
	}
	return out
}

// Last returns the most recently created handle
func (b *Backend) Last() *Handle {
	if len(b.Handles) == 0 {
		return nil
	}
	return b.Handles[len(b.Handles)-1]
}

// Handle is a fake playback.Handle
type Handle struct {
	Source   string
	Playing  bool
	Position time.Duration
	Dur      time.Duration
	Volume   float64
	Looping  bool
	Closed   bool

	PlayCalls  int
	PauseCalls int
	CloseCalls int
	// Seeks records every SetPosition argument
	Seeks []time.Duration

	playErr  error
	subs     map[int]func(current, total time.Duration)
	nextSub  int
	sequence int
}

var _ playback.Handle = (*Handle)(nil)

func (h *Handle) String() string {
	return fmt.Sprintf("handle#%d(%s)", h.sequence, h.Source)
}

func (h *Handle) Play() error {
	h.PlayCalls++
	if h.Closed {
		return playback.ErrClosed
	}
	if h.playErr != nil {
		return h.playErr
	}
	h.Playing = true
	return nil
}

func (h *Handle) Pause() {
	h.PauseCalls++
	h.Playing = false
}

func (h *Handle) SetPosition(d time.Duration) {
	h.Seeks = append(h.Seeks, d)
	h.Position = d
}

func (h *Handle) SetVolume(v float64) { h.Volume = v }

func (h *Handle) SetLooping(loop bool) { h.Looping = loop }

func (h *Handle) CurrentTime() time.Duration { return h.Position }

func (h *Handle) Duration() time.Duration { return h.Dur }

func (h *Handle) OnTimeUpdate(fn func(current, total time.Duration)) func() {
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() { delete(h.subs, id) }
}

func (h *Handle) Close() error {
	h.CloseCalls++
	if h.Closed {
		return playback.ErrClosed
	}
	h.Closed = true
	h.Playing = false
	for id := range h.subs {
		delete(h.subs, id)
	}
	return nil
}

// Subscribers returns the number of active time-update subscriptions
func (h *Handle) Subscribers() int {
	return len(h.subs)
}

// Fire moves the handle to current and notifies subscribers as a time
// update with the given total would
func (h *Handle) Fire(current, total time.Duration) {
	h.Position = current
	for _, fn := range h.subs {
		fn(current, total)
	}
}

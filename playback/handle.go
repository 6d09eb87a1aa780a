package playback

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"ambient/assets"
)

// speakerHandle is one sound in the speaker mixer. It never drains on its
// own, so a finished sound can still be seeked or looped until Close.
type speakerHandle struct {
	seeker   beep.StreamSeeker
	format   beep.Format
	loop     *loopStreamer
	volume   *effects.Volume
	ctrl     *beep.Ctrl
	closed   bool
	tick     time.Duration
	dispatch Dispatcher

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ Handle        = (*speakerHandle)(nil)
	_ beep.Streamer = (*speakerHandle)(nil)
)

// newSpeakerHandle plays decoded at outRate. A sound at another rate is
// converted up front, since a streaming resampler cannot restart after its
// source runs dry.
func newSpeakerHandle(decoded *assets.Decoded, outRate beep.SampleRate, tick time.Duration, dispatch Dispatcher) *speakerHandle {
	decoded = decoded.Resampled(outRate)

	seeker := decoded.Buffer.Streamer(0, decoded.Buffer.Len())
	loop := newLoopStreamer(seeker, false)

	volume := &effects.Volume{
		Streamer: loop,
		Base:     volumeBase,
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &speakerHandle{
		seeker:   seeker,
		format:   decoded.Format,
		loop:     loop,
		volume:   volume,
		ctrl:     &beep.Ctrl{Streamer: volume, Paused: true},
		tick:     tick,
		dispatch: dispatch,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Stream pads the controlled stream with silence until the handle is closed
func (h *speakerHandle) Stream(samples [][2]float64) (int, bool) {
	if h.closed {
		return 0, false
	}
	n, _ := h.ctrl.Stream(samples)
	clear(samples[n:])
	return len(samples), true
}

func (h *speakerHandle) Err() error {
	return nil
}

func (h *speakerHandle) Play() error {
	speaker.Lock()
	defer speaker.Unlock()

	if h.closed {
		return ErrClosed
	}
	h.ctrl.Paused = false
	return nil
}

func (h *speakerHandle) Pause() {
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
}

func (h *speakerHandle) paused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return h.ctrl.Paused || h.closed
}

func (h *speakerHandle) SetPosition(d time.Duration) {
	speaker.Lock()
	defer speaker.Unlock()

	pos := h.format.SampleRate.N(d)
	if pos < 0 {
		pos = 0
	}
	if last := h.seeker.Len() - 1; pos > last {
		pos = max(last, 0)
	}
	_ = h.seeker.Seek(pos)
}

func (h *speakerHandle) SetVolume(v float64) {
	speaker.Lock()
	h.volume.Volume = gain(v)
	h.volume.Silent = v <= 0
	speaker.Unlock()
}

func (h *speakerHandle) SetLooping(loop bool) {
	speaker.Lock()
	h.loop.looping = loop
	speaker.Unlock()
}

func (h *speakerHandle) CurrentTime() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return h.format.SampleRate.D(h.seeker.Position())
}

func (h *speakerHandle) Duration() time.Duration {
	return h.format.SampleRate.D(h.seeker.Len())
}

func (h *speakerHandle) OnTimeUpdate(fn func(current, total time.Duration)) func() {
	ctx, cancel := context.WithCancel(h.ctx)

	go func() {
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if h.paused() {
					continue
				}
				current, total := h.CurrentTime(), h.Duration()
				h.dispatch(func() {
					if ctx.Err() == nil {
						fn(current, total)
					}
				})
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }
}

// Close stops the handle; the mixer drops it on its next pass
func (h *speakerHandle) Close() error {
	speaker.Lock()
	if h.closed {
		speaker.Unlock()
		return ErrClosed
	}
	h.closed = true
	h.ctrl.Paused = true
	speaker.Unlock()

	h.cancel()
	return nil
}

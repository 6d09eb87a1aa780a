package playback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// SpeakerConfig configures the output device
type SpeakerConfig struct {
	SampleRate beep.SampleRate
	BufferSize time.Duration
	// Tick is the interval between time updates
	Tick time.Duration
}

// SpeakerOption configures a Speaker
type SpeakerOption func(*Speaker)

// WithDispatcher routes time updates through d
func WithDispatcher(d Dispatcher) SpeakerOption {
	return func(s *Speaker) {
		if d != nil {
			s.dispatch = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) SpeakerOption {
	return func(s *Speaker) {
		if l != nil {
			s.logger = l
		}
	}
}

// Speaker plays handles through the system audio device
type Speaker struct {
	mu       sync.Mutex
	config   SpeakerConfig
	loader   Loader
	mixer    *beep.Mixer
	dispatch Dispatcher
	logger   *slog.Logger
	closed   bool
}

var _ Backend = (*Speaker)(nil)

// The audio device is process-wide: it is opened by the first NewSpeaker and
// closed by Speaker.Close, after which NewSpeaker opens it again.
var (
	deviceMu   sync.Mutex
	deviceOpen bool

	deviceInit  = speaker.Init
	devicePlay  = speaker.Play
	deviceClose = speaker.Close
)

func openDevice(cfg SpeakerConfig) error {
	deviceMu.Lock()
	defer deviceMu.Unlock()

	if deviceOpen {
		return nil
	}
	if err := deviceInit(cfg.SampleRate, cfg.SampleRate.N(cfg.BufferSize)); err != nil {
		return err
	}
	deviceOpen = true
	return nil
}

func closeDevice() {
	deviceMu.Lock()
	defer deviceMu.Unlock()

	if !deviceOpen {
		return
	}
	deviceClose()
	deviceOpen = false
}

// NewSpeaker opens the audio device if needed and starts an empty mixer on it
func NewSpeaker(cfg SpeakerConfig, loader Loader, opts ...SpeakerOption) (*Speaker, error) {
	if cfg.SampleRate <= 0 || cfg.BufferSize <= 0 || cfg.Tick <= 0 {
		return nil, fmt.Errorf("invalid speaker config: %+v", cfg)
	}

	if err := openDevice(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}

	s := &Speaker{
		config:   cfg,
		loader:   loader,
		mixer:    &beep.Mixer{},
		dispatch: Inline,
		logger:   slog.With("component", "speaker"),
	}
	for _, opt := range opts {
		opt(s)
	}

	devicePlay(s.mixer)

	s.logger.Info("Speaker initialized",
		slog.Int("sample_rate", int(cfg.SampleRate)),
		slog.Duration("buffer", cfg.BufferSize))

	return s, nil
}

// Create decodes source and adds a paused handle for it to the mixer
func (s *Speaker) Create(source string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	decoded, err := s.loader.Load(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}

	h := newSpeakerHandle(decoded, s.config.SampleRate, s.config.Tick, s.dispatch)

	speaker.Lock()
	s.mixer.Add(h)
	speaker.Unlock()

	s.logger.Debug("Created handle",
		slog.String("source", source),
		slog.Duration("duration", h.Duration()))

	return h, nil
}

// Close silences the mixer and releases the audio device
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()

	closeDevice()

	s.logger.Info("Speaker closed")
	return nil
}

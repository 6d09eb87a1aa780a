// Package assets decodes sound files into in-memory beep buffers and caches them.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/patrickmn/go-cache"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotFound          = errors.New("sound file not found")
)

// Decoded holds a fully decoded sound and its format
type Decoded struct {
	Buffer *beep.Buffer
	Format beep.Format
}

// Duration returns the length of the decoded sound
func (d *Decoded) Duration() time.Duration {
	return d.Format.SampleRate.D(d.Buffer.Len())
}

// Resampled returns the sound converted to rate. It returns d itself when the
// rates already match or rate is not positive.
func (d *Decoded) Resampled(rate beep.SampleRate) *Decoded {
	if rate <= 0 || rate == d.Format.SampleRate {
		return d
	}

	format := d.Format
	format.SampleRate = rate

	buffer := beep.NewBuffer(format)
	buffer.Append(beep.Resample(resampleQuality, d.Format.SampleRate, rate, d.Buffer.Streamer(0, d.Buffer.Len())))

	return &Decoded{Buffer: buffer, Format: format}
}

const resampleQuality = 4

type decodeFunc func(f fs.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(f fs.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(f)
	},
	".wav": func(f fs.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(f)
	},
	".flac": func(f fs.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	},
	".ogg": func(f fs.File) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(f)
	},
}

// Loader opens sources relative to a sounds directory, decodes them and keeps
// the result around for a while
type Loader struct {
	fsys   fs.FS
	cache  *cache.Cache
	rate   beep.SampleRate
	logger *slog.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithSampleRate converts every decoded sound to rate before caching it
func WithSampleRate(rate beep.SampleRate) LoaderOption {
	return func(l *Loader) { l.rate = rate }
}

// NewLoader creates a loader reading from fsys. Decoded sounds expire from the
// cache after ttl; a non-positive ttl keeps them forever.
func NewLoader(fsys fs.FS, ttl time.Duration, opts ...LoaderOption) *Loader {
	cleanup := ttl
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	l := &Loader{
		fsys:   fsys,
		cache:  cache.New(ttl, cleanup),
		logger: slog.With("component", "assets"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the decoded sound for source, decoding it on first use
func (l *Loader) Load(source string) (*Decoded, error) {
	if v, ok := l.cache.Get(source); ok {
		return v.(*Decoded), nil
	}

	decoded, err := l.decode(source)
	if err != nil {
		return nil, err
	}

	l.cache.Set(source, decoded, cache.DefaultExpiration)
	l.logger.Debug("Decoded sound",
		slog.String("source", source),
		slog.Duration("duration", decoded.Duration()),
		slog.Int("sample_rate", int(decoded.Format.SampleRate)))

	return decoded, nil
}

// Available reports whether source exists and has a supported format, without decoding it
func (l *Loader) Available(source string) error {
	if _, ok := decoders[extension(source)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}

	f, err := l.open(source)
	if err != nil {
		return err
	}
	return f.Close()
}

// Preload decodes every source into the cache. Failures are logged and
// returned together; the remaining sources are still loaded.
func (l *Loader) Preload(sources ...string) error {
	var errs []error
	for _, source := range sources {
		if _, err := l.Load(source); err != nil {
			l.logger.Warn("Failed to preload sound", slog.String("source", source), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cached returns the number of decoded sounds currently held
func (l *Loader) Cached() int {
	return l.cache.ItemCount()
}

func (l *Loader) decode(source string) (*Decoded, error) {
	decode, ok := decoders[extension(source)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}

	f, err := l.open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	streamer, format, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}

	return (&Decoded{Buffer: buffer, Format: format}).Resampled(l.rate), nil
}

func (l *Loader) open(source string) (fs.File, error) {
	var (
		f   fs.File
		err error
	)
	if filepath.IsAbs(source) {
		f, err = os.Open(source)
	} else {
		name := path.Clean(filepath.ToSlash(source))
		if !fs.ValidPath(name) {
			return nil, fmt.Errorf("%w: invalid path %s", ErrNotFound, source)
		}
		f, err = l.fsys.Open(name)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	return f, nil
}

func extension(source string) string {
	return strings.ToLower(filepath.Ext(source))
}

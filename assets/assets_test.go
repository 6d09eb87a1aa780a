package assets

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = beep.SampleRate(8000)

// writeWAV writes a second of silence to dir/name and returns its path
func writeWAV(t *testing.T, dir, name string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(testRate.N(time.Second)), format))
	return p
}

func TestLoader_LoadWAV(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "rain.wav")

	l := NewLoader(os.DirFS(dir), time.Minute)

	decoded, err := l.Load("rain.wav")
	require.NoError(t, err)
	assert.Equal(t, testRate, decoded.Format.SampleRate)
	assert.Equal(t, testRate.N(time.Second), decoded.Buffer.Len())
	assert.Equal(t, time.Second, decoded.Duration())
	assert.Equal(t, 1, l.Cached())

	again, err := l.Load("rain.wav")
	require.NoError(t, err)
	assert.Same(t, decoded, again, "second load should come from the cache")
}

func TestLoader_LoadConvertsSampleRate(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "rain.wav")

	l := NewLoader(os.DirFS(dir), time.Minute, WithSampleRate(2*testRate))

	decoded, err := l.Load("rain.wav")
	require.NoError(t, err)
	assert.Equal(t, 2*testRate, decoded.Format.SampleRate)
	assert.InDelta(t, 2*testRate.N(time.Second), decoded.Buffer.Len(), 64)
	assert.InDelta(t, float64(time.Second), float64(decoded.Duration()), float64(10*time.Millisecond))
}

func TestDecoded_Resampled(t *testing.T) {
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)
	buffer.Append(beep.Silence(100))
	d := &Decoded{Buffer: buffer, Format: format}

	assert.Same(t, d, d.Resampled(testRate))
	assert.Same(t, d, d.Resampled(0))

	up := d.Resampled(2 * testRate)
	assert.NotSame(t, d, up)
	assert.Equal(t, 2*testRate, up.Format.SampleRate)
	assert.Equal(t, up.Format, up.Buffer.Format())
	assert.Equal(t, testRate, d.Format.SampleRate, "the source is left alone")
}

func TestLoader_LoadDotSlashSource(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "wind.wav")

	l := NewLoader(os.DirFS(dir), 0)

	_, err := l.Load("./wind.wav")
	require.NoError(t, err)
}

func TestLoader_LoadAbsolutePath(t *testing.T) {
	p := writeWAV(t, t.TempDir(), "forest.wav")

	l := NewLoader(fstest.MapFS{}, 0)

	_, err := l.Load(p)
	require.NoError(t, err)
}

func TestLoader_Errors(t *testing.T) {
	l := NewLoader(fstest.MapFS{
		"broken.wav": &fstest.MapFile{Data: []byte("not a wav file")},
		"notes.txt":  &fstest.MapFile{Data: []byte("hello")},
	}, 0)

	_, err := l.Load("missing.mp3")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = l.Load("notes.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load("broken.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.wav")

	_, err = l.Load("../escape.wav")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, l.Cached())
}

func TestLoader_Available(t *testing.T) {
	l := NewLoader(fstest.MapFS{
		"rain.mp3": &fstest.MapFile{Data: []byte("whatever")},
	}, 0)

	assert.NoError(t, l.Available("rain.mp3"))
	assert.ErrorIs(t, l.Available("waves.mp3"), ErrNotFound)
	assert.ErrorIs(t, l.Available("rain.aiff"), ErrUnsupportedFormat)
}

func TestLoader_Preload(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav")
	writeWAV(t, dir, "b.wav")

	l := NewLoader(os.DirFS(dir), time.Minute)

	err := l.Preload("a.wav", "missing.wav", "b.wav")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, l.Cached())
}

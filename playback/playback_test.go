package playback

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambient/assets"
)

const testRate = beep.SampleRate(10)

// rampDecoded returns one second of audio whose i-th sample is (i+1)/100
func rampDecoded(t *testing.T) *assets.Decoded {
	t.Helper()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)

	i := 0
	buffer.Append(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n := 0
		for n < len(samples) && i < 10 {
			v := float64(i+1) / 100
			samples[n] = [2]float64{v, v}
			n++
			i++
		}
		return n, n > 0
	}))
	require.Equal(t, 10, buffer.Len())

	return &assets.Decoded{Buffer: buffer, Format: format}
}

func left(samples [][2]float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s[0]
	}
	return out
}

func TestSpeakerHandle_PausedUntilPlay(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, time.Second, Inline)

	buf := make([][2]float64, 4)
	n, ok := h.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 4, n)
	assert.Equal(t, []float64{0, 0, 0, 0}, left(buf))
	assert.Equal(t, time.Duration(0), h.CurrentTime())

	require.NoError(t, h.Play())
	h.Stream(buf)
	assert.InDeltaSlice(t, []float64{0.01, 0.02, 0.03, 0.04}, left(buf), 1e-9)
	assert.Equal(t, 400*time.Millisecond, h.CurrentTime())
	assert.Equal(t, time.Second, h.Duration())
}

func TestSpeakerHandle_EndsWithoutLoop(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, time.Second, Inline)
	require.NoError(t, h.Play())

	h.SetPosition(800 * time.Millisecond)

	buf := make([][2]float64, 4)
	n, ok := h.Stream(buf)
	require.True(t, ok, "a finished handle keeps streaming silence")
	require.Equal(t, 4, n)
	assert.InDeltaSlice(t, []float64{0.09, 0.10, 0, 0}, left(buf), 1e-9)
}

func TestSpeakerHandle_LoopToggledLive(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, time.Second, Inline)
	require.NoError(t, h.Play())
	h.SetLooping(true)
	h.SetPosition(800 * time.Millisecond)

	buf := make([][2]float64, 4)
	h.Stream(buf)
	assert.InDeltaSlice(t, []float64{0.09, 0.10, 0.01, 0.02}, left(buf), 1e-9)
	assert.Equal(t, 200*time.Millisecond, h.CurrentTime())

	h.SetLooping(false)
	h.SetPosition(900 * time.Millisecond)
	h.Stream(buf)
	assert.InDeltaSlice(t, []float64{0.10, 0, 0, 0}, left(buf), 1e-9)
}

func TestSpeakerHandle_OtherRateRestartsAfterEnd(t *testing.T) {
	decoded := rampDecoded(t)
	decoded.Format.SampleRate = testRate / 2
	h := newSpeakerHandle(decoded, testRate, time.Second, Inline)

	assert.Equal(t, testRate, h.format.SampleRate)
	assert.InDelta(t, float64(2*time.Second), float64(h.Duration()), float64(300*time.Millisecond))

	require.NoError(t, h.Play())
	buf := make([][2]float64, 64)
	n, ok := h.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 64, n)

	h.SetLooping(true)
	h.SetPosition(0)

	buf = make([][2]float64, 8)
	h.Stream(buf)
	sum := 0.0
	for _, v := range left(buf) {
		sum += math.Abs(v)
	}
	assert.Greater(t, sum, 0.0, "sound plays again after it ended")
}

func TestSpeakerHandle_SetPositionClamps(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, time.Second, Inline)

	h.SetPosition(-time.Second)
	assert.Equal(t, time.Duration(0), h.CurrentTime())

	h.SetPosition(time.Hour)
	assert.Equal(t, 900*time.Millisecond, h.CurrentTime())
}

func TestSpeakerHandle_Volume(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, time.Second, Inline)
	require.NoError(t, h.Play())

	h.SetVolume(0)
	buf := make([][2]float64, 2)
	h.Stream(buf)
	assert.Equal(t, []float64{0, 0}, left(buf))

	h.SetVolume(1)
	h.Stream(buf)
	assert.InDeltaSlice(t, []float64{0.03, 0.04}, left(buf), 1e-9)
}

func TestSpeakerHandle_Close(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, time.Second, Inline)
	require.NoError(t, h.Close())

	n, ok := h.Stream(make([][2]float64, 4))
	assert.False(t, ok)
	assert.Equal(t, 0, n)

	assert.ErrorIs(t, h.Play(), ErrClosed)
	assert.ErrorIs(t, h.Close(), ErrClosed)
}

func TestSpeakerHandle_OnTimeUpdate(t *testing.T) {
	h := newSpeakerHandle(rampDecoded(t), testRate, 5*time.Millisecond, Inline)
	defer h.Close()

	require.NoError(t, h.Play())
	h.SetPosition(500 * time.Millisecond)

	type update struct{ current, total time.Duration }
	updates := make(chan update, 64)
	unsubscribe := h.OnTimeUpdate(func(current, total time.Duration) {
		select {
		case updates <- update{current, total}:
		default:
		}
	})

	select {
	case u := <-updates:
		assert.Equal(t, 500*time.Millisecond, u.current)
		assert.Equal(t, time.Second, u.total)
	case <-time.After(2 * time.Second):
		t.Fatal("no time update received")
	}

	unsubscribe()
	unsubscribe()

	time.Sleep(20 * time.Millisecond)
	for len(updates) > 0 {
		<-updates
	}
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, updates, "no updates after unsubscribe")
}

func TestSpeakerHandle_DispatcherIsUsed(t *testing.T) {
	dispatched := make(chan func(), 64)
	h := newSpeakerHandle(rampDecoded(t), testRate, 5*time.Millisecond, func(fn func()) {
		select {
		case dispatched <- fn:
		default:
		}
	})
	defer h.Close()
	require.NoError(t, h.Play())

	called := false
	unsubscribe := h.OnTimeUpdate(func(current, total time.Duration) { called = true })
	defer unsubscribe()

	var fn func()
	select {
	case fn = <-dispatched:
	case <-time.After(2 * time.Second):
		t.Fatal("nothing dispatched")
	}

	assert.False(t, called, "callback must not run before the dispatcher runs it")
	fn()
	assert.True(t, called)
}

func TestLoopStreamer_EmptySource(t *testing.T) {
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	empty := beep.NewBuffer(format)

	l := newLoopStreamer(empty.Streamer(0, 0), true)
	n, ok := l.Stream(make([][2]float64, 4))
	assert.Equal(t, 0, n)
	assert.False(t, ok)
}

func TestGain(t *testing.T) {
	assert.Equal(t, minVolumeGain, gain(0))
	assert.Equal(t, minVolumeGain, gain(-1))
	assert.Equal(t, 0.0, gain(1))
	assert.Equal(t, 0.0, gain(2))
	assert.InDelta(t, -5.0, gain(0.25), 1e-9)

	prev := gain(0)
	for v := 0.05; v <= 1.0; v += 0.05 {
		g := gain(v)
		assert.GreaterOrEqual(t, g, prev, "gain should not decrease at %.2f", v)
		prev = g
	}
}

func TestNewSpeaker_InvalidConfig(t *testing.T) {
	_, err := NewSpeaker(SpeakerConfig{}, nil)
	require.Error(t, err)
}

type stubLoader struct{ decoded *assets.Decoded }

func (l stubLoader) Load(string) (*assets.Decoded, error) { return l.decoded, nil }

func TestSpeaker_ReopensDeviceAfterClose(t *testing.T) {
	var inits, plays, closes int
	origInit, origPlay, origClose := deviceInit, devicePlay, deviceClose
	deviceInit = func(beep.SampleRate, int) error {
		inits++
		return nil
	}
	devicePlay = func(...beep.Streamer) { plays++ }
	deviceClose = func() { closes++ }
	t.Cleanup(func() {
		deviceInit, devicePlay, deviceClose = origInit, origPlay, origClose
		deviceOpen = false
	})

	cfg := SpeakerConfig{SampleRate: testRate, BufferSize: time.Second, Tick: time.Second}
	loader := stubLoader{decoded: rampDecoded(t)}

	first, err := NewSpeaker(cfg, loader)
	require.NoError(t, err)
	second, err := NewSpeaker(cfg, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, inits, "an open device is shared")

	h, err := first.Create("rain.wav")
	require.NoError(t, err)
	assert.Equal(t, time.Second, h.Duration())

	require.NoError(t, first.Close())
	require.NoError(t, first.Close())
	assert.Equal(t, 1, closes)

	_, err = first.Create("rain.wav")
	assert.ErrorIs(t, err, ErrClosed)

	third, err := NewSpeaker(cfg, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, inits, "a closed device is opened again")
	assert.Equal(t, 3, plays)

	require.NoError(t, second.Close())
	require.NoError(t, third.Close())
}

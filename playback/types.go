// Package playback is the audio primitive under the player: it creates one
// handle per sound and drives it on the system speaker.
package playback

import (
	"errors"
	"time"

	"ambient/assets"
)

// ErrClosed is returned by operations on a closed handle or backend
var ErrClosed = errors.New("playback: closed")

// Backend creates playback handles bound to an audio source
type Backend interface {
	Create(source string) (Handle, error)
}

// Handle controls a single sound. Handles start paused.
type Handle interface {
	Play() error
	Pause()
	SetPosition(d time.Duration)
	// SetVolume takes a linear volume between 0 and 1
	SetVolume(v float64)
	SetLooping(loop bool)
	CurrentTime() time.Duration
	// Duration is zero while unknown
	Duration() time.Duration
	// OnTimeUpdate calls fn periodically while the handle plays. The returned
	// function unsubscribes and may be called more than once.
	OnTimeUpdate(fn func(current, total time.Duration)) (unsubscribe func())
	Close() error
}

// Loader supplies decoded audio for a source
type Loader interface {
	Load(source string) (*assets.Decoded, error)
}

// Dispatcher delivers a callback to the goroutine that owns player state
type Dispatcher func(fn func())

// Inline runs callbacks on the calling goroutine
func Inline(fn func()) { fn() }

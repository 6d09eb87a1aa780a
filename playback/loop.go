package playback

import "github.com/gopxl/beep/v2"

// loopStreamer repeats its source while looping is set. Unlike beep.Loop the
// flag can be flipped while streaming; callers hold the speaker lock.
type loopStreamer struct {
	s       beep.StreamSeeker
	looping bool
}

func newLoopStreamer(s beep.StreamSeeker, looping bool) *loopStreamer {
	return &loopStreamer{s: s, looping: looping}
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if l.s.Err() != nil {
		return 0, false
	}
	for len(samples) > 0 {
		sn, sok := l.s.Stream(samples)
		n += sn
		samples = samples[sn:]
		if sok && sn > 0 {
			continue
		}
		if !l.looping || l.s.Len() == 0 {
			return n, n > 0
		}
		if err := l.s.Seek(0); err != nil {
			return n, n > 0
		}
	}
	return n, true
}

func (l *loopStreamer) Err() error {
	return l.s.Err()
}

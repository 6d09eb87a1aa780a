package playback

import "math"

const (
	volumeBase    = 2.0
	volumeCurve   = 0.5
	minVolumeGain = -10.0
)

// gain maps a linear 0..1 volume onto the exponent used by effects.Volume.
// The square-root curve keeps the lower half of the slider audible.
func gain(v float64) float64 {
	if v <= 0 {
		return minVolumeGain
	}
	if v >= 1 {
		return 0
	}
	return (1 - math.Pow(v, volumeCurve)) * minVolumeGain
}

package click

import "math"

// Limiter is a peak limiter: gain drops at once when a sample would exceed
// the ceiling and recovers over the release time. Both channels share one
// gain so the stereo image stays put.
type Limiter struct {
	ceiling float32
	release float32 // coefficient
	gain    float32
}

// NewLimiter builds a limiter with the ceiling in dBFS.
func NewLimiter(sampleRate int, ceilingDB, releaseMs float32) *Limiter {
	sr := float64(sampleRate)
	return &Limiter{
		ceiling: float32(math.Pow(10, float64(ceilingDB)/20)),
		release: float32(1.0 - math.Exp(-1.0/(float64(releaseMs)*sr/1000.0))),
		gain:    1,
	}
}

func (l *Limiter) Process(left, right float32) (float32, float32) {
	peak := max(abs32(left), abs32(right))
	if peak*l.gain > l.ceiling {
		l.gain = l.ceiling / peak
	} else {
		l.gain += l.release * (1 - l.gain)
		if peak*l.gain > l.ceiling {
			l.gain = l.ceiling / peak
		}
	}
	return left * l.gain, right * l.gain
}

func (l *Limiter) Reset() { l.gain = 1 }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

package vocal

import (
	"math"

	"github.com/cwbudde/algo-vocal/dsp"
)

// audibleFloor is the running-peak level below which the delay tail is
// treated as silence, about -72 dBFS.
const audibleFloor = 0.00025

// DelayEngine is a single-tap feedback delay with a cubic-interpolated read
// head and up to one second of travel. It keeps a decaying peak of the dry
// and wet levels so callers can tell when the tail has rung out.
type DelayEngine struct {
	line       *dsp.DelayLine
	sampleRate float32
	maxDelay   float32
	peak       float32
	peakDecay  float32
}

// Init sizes the line for one second of delay at the given sample rate.
func (d *DelayEngine) Init(sampleRate float32) {
	size := int(sampleRate)
	d.line = dsp.NewDelayLine(size)
	d.sampleRate = sampleRate
	// The cubic tap needs two samples of headroom past the read point.
	d.maxDelay = float32(size - 3)
	d.peak = 0.0
	d.peakDecay = float32(math.Exp(-6.0 / float64(sampleRate)))
}

// Reset clears the line and the audibility tracker.
func (d *DelayEngine) Reset() {
	d.line.Reset()
	d.peak = 0.0
}

// Process feeds one sample through the delay. delayTime is in seconds and is
// clamped to the line capacity. The returned sample is dry plus tap; the
// line is fed dry plus tap scaled by feedback.
func (d *DelayEngine) Process(input, delayTime, feedback float32) float32 {
	// Floor of 2: the cubic tap reads one sample before the read point, and
	// below 2 that sample wraps to the oldest slot in the line.
	delaySamples := clampf(delayTime*d.sampleRate, 2.0, d.maxDelay)
	tap := d.line.ReadCubic(delaySamples)
	d.line.Write(dsp.FlushDenormals(input + tap*feedback))

	peak := d.peak * d.peakDecay
	dry := input
	if dry < 0 {
		dry = -dry
	}
	if dry > peak {
		peak = dry
	}
	wet := tap
	if wet < 0 {
		wet = -wet
	}
	if wet > peak {
		peak = wet
	}
	d.peak = peak

	return input + tap
}

// Audible reports whether anything above the silence floor passed through
// recently or is still circulating in the line.
func (d *DelayEngine) Audible() bool {
	return d.peak > audibleFloor
}

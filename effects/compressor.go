package effects

import (
	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Compressor is a feed-forward peak compressor: a rectified envelope
// follower with separate attack and release smoothing, and a hard-knee
// ratio above the threshold.
type Compressor struct {
	threshold    float32
	ratio        float32
	attackCoeff  float32
	releaseCoeff float32
	envelope     float32
}

// Init sets the static curve and ballistics. Times are in seconds.
func (c *Compressor) Init(threshold, ratio, attackTime, releaseTime, sampleRate float32) {
	c.threshold = threshold
	c.ratio = ratio
	c.attackCoeff = approx.FastExp(-1.0 / (attackTime * sampleRate))
	c.releaseCoeff = approx.FastExp(-1.0 / (releaseTime * sampleRate))
	c.envelope = 0.0
}

// Reset clears the envelope follower.
func (c *Compressor) Reset() {
	c.envelope = 0.0
}

// Process applies gain reduction to one sample.
func (c *Compressor) Process(input float32) float32 {
	rectified := input
	if rectified < 0 {
		rectified = -rectified
	}
	if rectified > c.envelope {
		c.envelope = c.attackCoeff*(c.envelope-rectified) + rectified
	} else {
		// The release leg decays exponentially into denormal range on
		// silent input.
		c.envelope = float32(dspcore.FlushDenormals(float64(c.releaseCoeff*(c.envelope-rectified) + rectified)))
	}

	gain := float32(1.0)
	if c.envelope > c.threshold {
		over := c.envelope - c.threshold
		compressed := c.threshold + over/c.ratio
		gain = compressed / c.envelope
	}
	return input * gain
}

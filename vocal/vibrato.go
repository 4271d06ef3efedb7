package vocal

import "math"

// maxVibratoDepth caps pitch modulation at +-25% of the carrier frequency.
const maxVibratoDepth = 0.25

// vibratoDepthSmoothing is the per-sample approach factor for depth changes
// coming from the control surface.
const vibratoDepthSmoothing = 0.02

// Vibrato is a sinusoidal pitch modulator with a per-note swell. Trigger
// resets the live depth to zero so each note's vibrato builds up over the
// configured buildup time instead of arriving at full width.
type Vibrato struct {
	sampleRate float32
	phase      float32
	rate       float32

	// depth chases targetDepth; currentDepth is the per-note ramp that
	// restarts from zero on Trigger and chases depth.
	depth        float32
	targetDepth  float32
	buildupTime  float32
	currentDepth float32
	buildingUp   bool
}

// Init resets the modulator for the given sample rate with a gentle default
// depth.
func (v *Vibrato) Init(sampleRate float32) {
	v.sampleRate = sampleRate
	v.phase = 0.0
	v.rate = 5.0
	v.targetDepth = 0.02
	v.depth = v.targetDepth
	v.buildupTime = 1.0
	v.currentDepth = 0.0
	v.buildingUp = false
}

// SetParameters sets the LFO rate in Hz, the target depth, and the buildup
// time in seconds. Non-positive buildup times are pinned to 10 ms.
func (v *Vibrato) SetParameters(rate, depth, buildupTime float32) {
	v.rate = rate
	v.targetDepth = depth
	if buildupTime <= 0.0 {
		buildupTime = 0.01
	}
	v.buildupTime = buildupTime
}

// SetDepth maps a control value in [0,1] onto the target depth range.
func (v *Vibrato) SetDepth(amount float32) {
	v.targetDepth = amount * maxVibratoDepth
}

// Trigger restarts the per-note swell from zero depth.
func (v *Vibrato) Trigger() {
	v.buildingUp = true
	v.currentDepth = 0.0
}

// Process advances the LFO one sample and returns the modulated frequency.
func (v *Vibrato) Process(inputFreq float32) float32 {
	v.depth += (v.targetDepth - v.depth) * vibratoDepthSmoothing
	v.depth = clampf(v.depth, 0.0, maxVibratoDepth)

	// Chase the live depth at a speed set by the buildup time. The ramp
	// also follows depth downward if the control moves mid-note.
	alpha := 1.0 / (v.buildupTime * v.sampleRate)
	cdDiff := v.depth - v.currentDepth
	v.currentDepth += cdDiff * alpha
	if math.Abs(float64(cdDiff)) < 0.0001 {
		v.currentDepth = v.depth
		v.buildingUp = false
	}
	v.currentDepth = clampf(v.currentDepth, 0.0, v.depth)

	phaseIncrement := 2.0 * float32(math.Pi) * v.rate / v.sampleRate
	v.phase += phaseIncrement
	if v.phase >= 2.0*float32(math.Pi) {
		v.phase -= 2.0 * float32(math.Pi)
	}

	vib := float32(math.Sin(float64(v.phase))) * v.currentDepth
	return inputFreq * (1.0 + vib)
}

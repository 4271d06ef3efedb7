package dsp

import "math"

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given a0-normalized coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	// Update state
	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// SetBandpass retunes the filter to a constant-peak-gain bandpass without
// clearing the delay-line state, so a resonator can track a moving center
// frequency mid-stream. Peak gain is 1.0 at the center regardless of Q.
func (b *Biquad) SetBandpass(centerHz, sampleRate, q float32) {
	w0 := 2.0 * math.Pi * float64(centerHz) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	a0 := 1.0 + alpha
	b.b0 = float32(alpha / a0)
	b.b1 = 0
	b.b2 = float32(-alpha / a0)
	b.a1 = float32(-2.0 * cosw0 / a0)
	b.a2 = float32((1.0 - alpha) / a0)
}

// NewBandpass creates a constant-peak-gain bandpass biquad
func NewBandpass(centerHz, sampleRate, q float32) *Biquad {
	b := &Biquad{}
	b.SetBandpass(centerHz, sampleRate, q)
	return b
}

// NewLowpass creates a simple lowpass biquad filter
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	// Normalize by a0
	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}

// DelayLine implements a circular buffer for delay
type DelayLine struct {
	buffer   []float32
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size
func NewDelayLine(size int) *DelayLine {
	return &DelayLine{
		buffer: make([]float32, size),
		size:   size,
	}
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read reads a sample from the delay line at the given delay (in samples)
func (d *DelayLine) Read(delay int) float32 {
	readPos := (d.writePos - delay + d.size) % d.size
	return d.buffer[readPos]
}

// ReadCubic reads with fractional delay using 4-point Lagrange interpolation.
// The delay must be at least 1 sample so the point before the tap exists.
func (d *DelayLine) ReadCubic(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)
	if intDelay < 1 {
		intDelay = 1
		frac = 0
	}

	s0 := d.Read(intDelay - 1)
	s1 := d.Read(intDelay)
	s2 := d.Read(intDelay + 1)
	s3 := d.Read(intDelay + 2)

	// Cubic Lagrange between s1 and s2
	c0 := s1
	c1 := s2 - s0/3.0 - s1/2.0 - s3/6.0
	c2 := s0/2.0 - s1 + s2/2.0
	c3 := s1/2.0 - s2/2.0 + (s3-s0)/6.0

	return c0 + frac*(c1+frac*(c2+frac*c3))
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// Size returns the delay line capacity in samples
func (d *DelayLine) Size() int {
	return d.size
}

// FlushDenormals converts denormal numbers to zero to avoid performance issues
func FlushDenormals(x float32) float32 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0.0
	}
	return x
}

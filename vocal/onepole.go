package vocal

import "math"

// OnePoleLowpass is a single-coefficient IIR lowpass used for tone shaping.
// The zero value is unusable; call Init first.
type OnePoleLowpass struct {
	factor  float32
	history float32
}

// Init configures the cutoff and primes the filter state.
func (f *OnePoleLowpass) Init(cutoff, sampleRate, initial float32) {
	omega := 2.0 * float32(math.Pi) * cutoff / sampleRate
	f.factor = omega / (1.0 + omega)
	f.Reset(initial)
}

// Reset sets the filter state to the given value.
func (f *OnePoleLowpass) Reset(initial float32) {
	f.history = initial
}

// Process filters one sample.
func (f *OnePoleLowpass) Process(input float32) float32 {
	f.history += f.factor * (input - f.history)
	return f.history
}

// Output returns the last output without advancing the filter.
func (f *OnePoleLowpass) Output() float32 {
	return f.history
}

// OnePoleHighpass removes content below the cutoff by tracking it with an
// internal lowpass and subtracting it from the input (DC removal).
type OnePoleHighpass struct {
	factor         float32
	history        float32
	lowpassHistory float32
}

// Init configures the cutoff and primes the filter state.
func (f *OnePoleHighpass) Init(cutoff, sampleRate, initial float32) {
	omega := 2.0 * float32(math.Pi) * cutoff / sampleRate
	f.factor = omega / (1.0 + omega)
	f.Reset(initial)
}

// Reset sets the filter state to the given value.
func (f *OnePoleHighpass) Reset(initial float32) {
	f.history = initial
	f.lowpassHistory = initial
}

// Process filters one sample.
func (f *OnePoleHighpass) Process(input float32) float32 {
	f.lowpassHistory += f.factor * (input - f.lowpassHistory)
	output := input - f.lowpassHistory
	f.history = output
	return output
}

// Output returns the last output without advancing the filter.
func (f *OnePoleHighpass) Output() float32 {
	return f.history
}

package vocal

import "github.com/cwbudde/algo-vocal/dsp"

// aaCutoffHz is the anti-image cutoff. It sits just below half the source
// rate so the stopband covers the image bands that zero-stuffing creates.
const aaCutoffHz = 7200.0

// butterworthQ gives the flattest passband a single lowpass biquad can
// manage.
const butterworthQ = 0.7071068

// AAFilter is a Butterworth lowpass run at the oversampled output rate. The
// engine zero-stuffs each rendered sample to BlockSize frames; this filter
// smears that impulse train back into a continuous waveform.
type AAFilter struct {
	section dsp.Biquad
}

// Init configures the filter for the given oversampled rate.
func (f *AAFilter) Init(oversampledRate float32) {
	f.section = *dsp.NewLowpass(aaCutoffHz, oversampledRate, butterworthQ)
}

// Reset clears the filter state.
func (f *AAFilter) Reset() {
	f.section.Reset()
}

// Process filters one oversampled frame.
func (f *AAFilter) Process(input float32) float32 {
	return dsp.FlushDenormals(f.section.Process(input))
}

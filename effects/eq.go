package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

const bandCount = 3

// ThreeBandEQ sums three independently tuned peaking resonators. The bands
// run in parallel, so with every gain at 0 dB the output is three times the
// input.
type ThreeBandEQ struct {
	sampleRate float32
	sections   [bandCount]biquad.Section
}

// Init sets the sample rate and puts every band into unity passthrough.
func (eq *ThreeBandEQ) Init(sampleRate float32) {
	eq.sampleRate = sampleRate
	for i := range eq.sections {
		eq.sections[i] = *biquad.NewSection(biquad.Coefficients{B0: 1.0})
	}
}

// SetBand tunes one band's peaking filter. Band indexes outside the three
// bands are ignored.
func (eq *ThreeBandEQ) SetBand(band int, centerHz, q, gainDB float32) {
	if band < 0 || band >= bandCount {
		return
	}
	c := peakingCoefficients(float64(centerHz), float64(eq.sampleRate), float64(q), float64(gainDB))
	eq.sections[band] = *biquad.NewSection(c)
}

// Process runs one sample through all bands and sums them.
func (eq *ThreeBandEQ) Process(input float32) float32 {
	var sum float64
	for i := range eq.sections {
		sum += eq.sections[i].ProcessSample(float64(input))
	}
	return float32(sum)
}

// Reset clears every band's filter state.
func (eq *ThreeBandEQ) Reset() {
	for i := range eq.sections {
		eq.sections[i].Reset()
	}
}

// peakingCoefficients builds an RBJ cookbook peaking section, normalized by
// a0. Center gain is 10^(gainDB/20); the skirt returns to unity.
func peakingCoefficients(centerHz, sampleRate, q, gainDB float64) biquad.Coefficients {
	a := math.Pow(10.0, gainDB/40.0)
	w := 2.0 * math.Pi * centerHz / sampleRate
	alpha := math.Sin(w) / (2.0 * q)
	cosw := math.Cos(w)

	a0 := 1.0 + alpha/a
	return biquad.Coefficients{
		B0: (1.0 + alpha*a) / a0,
		B1: -2.0 * cosw / a0,
		B2: (1.0 - alpha*a) / a0,
		A1: -2.0 * cosw / a0,
		A2: (1.0 - alpha/a) / a0,
	}
}

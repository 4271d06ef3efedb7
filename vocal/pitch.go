package vocal

import "math"

// diatonicRatios are equal-tempered C-major intervals from the fundamental
// up to the octave.
var diatonicRatios = [8]float32{
	1.0,     // C
	1.12246, // D
	1.25992, // E
	1.33484, // F
	1.49831, // G
	1.68179, // A
	1.88775, // B
	2.0,     // C
}

// potThresholds split the pitch pot travel into the eight scale degrees.
var potThresholds = [7]float32{0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875}

// offsetHoldSamples is how long a detune offset stays in force before a new
// one is rolled.
const offsetHoldSamples = 1000

// scaleDegreeForPot snaps a pot position in [0,1] to a scale degree index.
func scaleDegreeForPot(pot float32) int {
	if pot < potThresholds[0] {
		return 0
	}
	if pot >= potThresholds[len(potThresholds)-1] {
		return len(diatonicRatios) - 1
	}
	for i := 1; i < len(potThresholds); i++ {
		if pot < potThresholds[i] {
			return i
		}
	}
	return len(diatonicRatios) - 1
}

// updatePitchWithScale snaps the pitch pot to a scale degree, rerolls the
// vowel color when the degree changes, wanders the tuning slightly, and
// glides the oscillator toward the result.
func (e *Engine) updatePitchWithScale(pot float32) {
	idx := scaleDegreeForPot(pot)
	e.possiblyUpdateVowel(idx)

	base := e.fundamentalFreq * diatonicRatios[idx] * e.freqMult
	e.possiblyUpdateFrequencyOffset(base)

	target := base + e.targetFreqOffset
	e.smoothFrequencyToward(e.vib.Process(target))
}

// possiblyUpdateVowel rerolls the voice and vowel on a scale degree change.
// The voice roll spans three selectors; picks beyond the tuned voices are
// dropped by the filter's selector guard.
func (e *Engine) possiblyUpdateVowel(targetIndex int) {
	if targetIndex == e.previousTargetIndex {
		return
	}
	e.formants.SetVoice(Voice(e.rng.Intn(3)))
	e.formants.SetVowel(Vowel(e.rng.Intn(int(VowelCount))))
	e.previousTargetIndex = targetIndex
}

// possiblyUpdateFrequencyOffset rolls a fresh detune offset when the old one
// expires or the glide has nearly caught up with it.
func (e *Engine) possiblyUpdateFrequencyOffset(baseTarget float32) {
	settled := math.Abs(float64(e.currentFrequency-(baseTarget+e.targetFreqOffset))) <
		float64(e.frequencyMargin)
	if e.offsetCounter <= 0 || settled {
		maxOffset := baseTarget * e.wobbliness
		e.targetFreqOffset = (e.rng.Float32()*2.0 - 1.0) * maxOffset
		e.offsetCounter = offsetHoldSamples
	}
	e.offsetCounter--
}

// smoothFrequencyToward glides the oscillator frequency toward the target.
func (e *Engine) smoothFrequencyToward(target float32) {
	e.currentFrequency += (target - e.currentFrequency) * e.freqRate
}

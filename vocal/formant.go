package vocal

import "github.com/cwbudde/algo-vocal/dsp"

// formantMixGain makes up for the level lost across the three resonators.
const formantMixGain = 1.7

// FormantFilter imposes a vowel's resonance peaks on a source signal using
// three parallel bandpass stages. Center frequencies and Qs morph toward
// their targets a little on every UpdateParameters call, so vowel changes
// glide instead of stepping.
//
// In wah mode the vowel table is bypassed and the targets are interpolated
// between the open /a/ and rounded /o/ rows by the wah position.
type FormantFilter struct {
	sampleRate float32
	filters    [formantStages]dsp.Biquad

	currentFreq [formantStages]float32
	targetFreq  [formantStages]float32
	currentQ    [formantStages]float32
	targetQ     [formantStages]float32

	rate     float32
	qMult    float32
	freqMult float32
	mix      [formantStages]float32

	voice       Voice
	wahMode     bool
	wahPosition float32
}

// Init resets the filter to the neutral voice on vowel /a/ at the given
// sample rate.
func (f *FormantFilter) Init(sampleRate float32) {
	f.sampleRate = sampleRate
	f.voice = VoiceNeutral
	f.wahMode = false
	f.wahPosition = 0.0
	f.qMult = 1.0
	f.freqMult = 1.0
	f.mix = [formantStages]float32{1.0, 0.4, 0.3}
	f.SetVowel(VowelA)
	for i := range f.filters {
		f.currentFreq[i] = f.targetFreq[i]
		f.currentQ[i] = f.targetQ[i]
		f.filters[i] = *dsp.NewBandpass(f.currentFreq[i], sampleRate, f.currentQ[i])
	}
	f.rate = 0.002
}

// SetWahMode switches between table-driven vowels and wah interpolation.
func (f *FormantFilter) SetWahMode(enabled bool) {
	f.wahMode = enabled
}

// SetVoice selects the table voice. Out-of-range selectors are ignored.
func (f *FormantFilter) SetVoice(voice Voice) {
	if voice < 0 || voice >= VoiceCount {
		return
	}
	f.voice = voice
}

// SetWahPosition sets the wah sweep position, clamped to [0,1]: 0 is /a/,
// 1 is /o/.
func (f *FormantFilter) SetWahPosition(pos float32) {
	f.wahPosition = clampf(pos, 0.0, 1.0)
}

// SetQMult scales every stage's Q when the filters are retuned.
func (f *FormantFilter) SetQMult(mult float32) {
	f.qMult = mult
}

// SetFreqMult scales every stage's center frequency when the filters are
// retuned.
func (f *FormantFilter) SetFreqMult(mult float32) {
	f.freqMult = mult
}

// SetVowel retargets the resonators at a table row. It has no effect in wah
// mode, and out-of-range selectors are ignored.
func (f *FormantFilter) SetVowel(vowel Vowel) {
	if f.wahMode {
		return
	}
	if vowel < 0 || vowel >= VowelCount {
		return
	}
	t := vowelTable[f.voice][vowel]
	for i := 0; i < formantStages; i++ {
		f.targetFreq[i] = t.freq[i]
		f.targetQ[i] = t.q[i]
	}
}

// SetTargets retargets the resonators at explicit center frequencies and
// Qs instead of a table row. It has no effect in wah mode.
func (f *FormantFilter) SetTargets(freqs, qs [formantStages]float32) {
	if f.wahMode {
		return
	}
	for i := 0; i < formantStages; i++ {
		f.targetFreq[i] = freqs[i]
		f.targetQ[i] = qs[i]
	}
}

// SetStageMix sets the per-resonator mix weights applied ahead of the
// makeup gain.
func (f *FormantFilter) SetStageMix(mix [formantStages]float32) {
	for i, w := range mix {
		f.mix[i] = clampf(w, 0.0, 2.0)
	}
}

// SetFormantRate sets the per-sample morphing rate toward the targets.
func (f *FormantFilter) SetFormantRate(rate float32) {
	f.rate = rate
}

// UpdateParameters moves the live frequencies and Qs one morph step toward
// their targets and retunes the resonators. Call once per control update.
func (f *FormantFilter) UpdateParameters() {
	if f.wahMode {
		a := vowelTable[f.voice][VowelA]
		o := vowelTable[f.voice][VowelOU]
		for i := 0; i < formantStages; i++ {
			f.targetFreq[i] = lerpf(a.freq[i], o.freq[i], f.wahPosition)
			f.targetQ[i] = lerpf(a.q[i], o.q[i], f.wahPosition)
		}
	}

	for i := 0; i < formantStages; i++ {
		f.currentFreq[i] += (f.targetFreq[i] - f.currentFreq[i]) * f.rate
		f.currentQ[i] += (f.targetQ[i] - f.currentQ[i]) * f.rate
		f.filters[i].SetBandpass(f.currentFreq[i]*f.freqMult, f.sampleRate, f.currentQ[i]*f.qMult)
	}
}

// Process runs one sample through the three resonators and mixes them.
func (f *FormantFilter) Process(input float32) float32 {
	out1 := f.filters[0].Process(input)
	out2 := f.filters[1].Process(input)
	out3 := f.filters[2].Process(input)
	return (out1*f.mix[0] + out2*f.mix[1] + out3*f.mix[2]) * formantMixGain
}

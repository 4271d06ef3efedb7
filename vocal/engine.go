package vocal

import "math/rand"

// frequencyMarginHz is how close the glide must get to the detuned target
// before a new detune offset is rolled.
const frequencyMarginHz = 0.05

// Engine is the monophonic voice: a band-limited pulse oscillator pushed
// through a one-pole lowpass, the formant filter, an ADSR, and a feedback
// delay. Each control tick renders one source sample and zero-stuffs it to
// BlockSize oversampled output frames behind the anti-image filter.
type Engine struct {
	params *Params
	rng    *rand.Rand

	sampleRate float32

	phase            float32
	currentFrequency float32
	fundamentalFreq  float32
	targetFreqOffset float32
	frequencyMargin  float32
	offsetCounter    int
	freqRate         float32
	wobbliness       float32
	freqMult         float32
	dutyGain         float32
	delayTime        float32
	delayFeedback    float32

	noteOn               bool
	wasButtonPressed     bool
	wasFreqSelectPressed bool
	previousTargetIndex  int

	env      adsr
	osc      PulseOscillator
	lowpass  OnePoleLowpass
	formants FormantFilter
	vib      Vibrato
	delay    DelayEngine
	aa       AAFilter

	// Slow character morph state driven by UpdateVoiceCharacter.
	targetFormantFreqMult float32
	formantFreqMult       float32
	targetDutyRand        float32
	dutyRand              float32
}

// NewEngine builds a ready-to-play engine. A nil params uses the defaults;
// a nil rng gets a fixed-seed source so renders are reproducible.
func NewEngine(params *Params, rng *rand.Rand) *Engine {
	if params == nil {
		params = NewDefaultParams()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	e := &Engine{
		params:              params,
		rng:                 rng,
		sampleRate:          params.SampleRate,
		currentFrequency:    params.StartFrequency,
		fundamentalFreq:     params.StartFrequency,
		frequencyMargin:     frequencyMarginHz,
		freqRate:            params.FreqSmoothingRate,
		wobbliness:          params.Wobbliness,
		freqMult:            params.FreqMult,
		dutyGain:            params.DutyGain,
		delayTime:           params.DelayTime,
		delayFeedback:       params.DelayFeedback,
		previousTargetIndex: -1,
	}

	e.env = adsr{
		attackTime:   params.AttackTime,
		decayTime:    params.DecayTime,
		sustainLevel: params.SustainLevel,
		releaseTime:  params.ReleaseTime,
	}

	e.osc.Init(rng)
	e.osc.SetBaseDutyCycle(params.BaseDutyCycle)
	e.osc.SetRandomization(params.DutyRandomization)

	e.lowpass.Init(params.LowpassCutoff, e.sampleRate, 0.0)

	e.formants.Init(e.sampleRate)
	e.formants.SetVoice(VoiceNeutral)
	e.formants.SetQMult(params.QMult)
	e.formants.SetFreqMult(params.FormantFreqMult)
	e.formants.SetWahMode(params.WahMode)
	e.formants.SetFormantRate(params.FormantRate)

	e.vib.Init(e.sampleRate)
	e.vib.SetParameters(params.VibratoRate, params.VibratoDepth, params.VibratoBuildup)

	e.delay.Init(e.sampleRate)
	e.aa.Init(float32(BlockSize) * e.sampleRate)

	e.targetFormantFreqMult = params.FormantFreqMult
	e.formantFreqMult = params.FormantFreqMult
	e.targetDutyRand = params.DutyRandomization
	e.dutyRand = params.DutyRandomization

	return e
}

// Process renders one source sample into block as BlockSize oversampled
// frames and advances the control state one tick.
//
// buttonPressed is the voice button; with hold set, presses toggle the note
// instead of gating it. pitchPot in [0,1] picks the scale degree, formantPot
// sets the wah sweep position, vibratoPot sets vibrato depth. While
// freqSelect is held, pitchPot retunes the fundamental between C1 and C6
// instead of playing degrees, and the envelope is forced open so the tuning
// is audible.
func (e *Engine) Process(block *[BlockSize]float32, buttonPressed bool, pitchPot float32, hold bool, formantPot float32, vibratoPot float32, freqSelect bool) {
	e.formants.UpdateParameters()
	e.formants.SetWahPosition(formantPot)
	e.vib.SetDepth(vibratoPot)

	if freqSelect && !e.wasFreqSelectPressed {
		e.StartEnvelope()
	} else if !freqSelect && e.wasFreqSelectPressed {
		e.StopEnvelope()
	}

	if !freqSelect {
		if buttonPressed && !e.wasButtonPressed {
			if hold {
				e.noteOn = !e.noteOn
				if e.noteOn {
					e.StartEnvelope()
				} else {
					e.StopEnvelope()
				}
			} else {
				e.StartEnvelope()
			}
		} else if !hold && !buttonPressed && e.wasButtonPressed {
			e.StopEnvelope()
		}

		if (hold && e.noteOn) || (!hold && buttonPressed) {
			e.updatePitchWithScale(pitchPot)
		}
	} else {
		if !e.noteOn {
			e.StartEnvelope()
		}
		e.fundamentalFreq = mapf(pitchPot, 0.0, 1.0, MinFundamental, MaxFundamental)
		e.smoothFrequencyToward(e.vib.Process(e.fundamentalFreq))
	}

	sample := e.renderOneSample()
	sample *= float32(BlockSize) * e.params.OutputLevel

	for i := 0; i < BlockSize; i++ {
		var in float32
		if i == 0 {
			in = sample
		}
		block[i] = e.aa.Process(in)
	}

	e.wasButtonPressed = buttonPressed
	e.wasFreqSelectPressed = freqSelect
}

// Active reports whether the engine is still producing sound: the envelope
// is running or the delay tail is ringing.
func (e *Engine) Active() bool {
	return e.env.stage != stageIdle || e.delay.Audible()
}

// StartEnvelope opens the envelope from zero, snaps the vowel open to /a/,
// and restarts the vibrato swell.
func (e *Engine) StartEnvelope() {
	e.env.start()
	e.noteOn = true
	e.formants.SetVowel(VowelA)
	e.vib.Trigger()
}

// StopEnvelope releases the note. An idle envelope stays idle.
func (e *Engine) StopEnvelope() {
	e.env.stop()
}

func (e *Engine) renderOneSample() float32 {
	if e.env.stage == stageIdle && !e.delay.Audible() {
		return 0.0
	}

	e.updateEnvelope()

	phaseIncrement := e.currentFrequency / e.sampleRate
	e.phase += phaseIncrement
	if e.phase >= 1.0 {
		e.phase -= 1.0
	}

	sample := e.osc.Generate(e.phase, phaseIncrement)
	sample = e.lowpass.Process(sample)
	sample = e.formants.Process(sample)
	sample *= e.env.value
	sample = e.delay.Process(sample, e.delayTime, e.delayFeedback)
	sample *= e.dutyGain

	return sample
}

func (e *Engine) updateEnvelope() {
	if e.env.stage == stageRelease {
		// Morph back toward closed lips while fading out.
		e.formants.SetVowel(VowelOU)
		e.formants.SetFormantRate(e.params.ReleaseFormantRate)
	}
	if e.env.step(e.sampleRate) {
		e.noteOn = false
	}
}

// SetCharacter morphs the voice between a tight robotic buzz at 0 and a
// loose chant at 1, retuning glide speed, pulse width, and formant behavior
// together.
func (e *Engine) SetCharacter(amount float32) {
	e.freqRate = mapf(amount, 0.0, 1.0, 0.00001, 0.008)
	e.osc.SetBaseDutyCycle(mapf(amount, 0.0, 1.0, 0.0003, 0.5))
	e.formants.SetFreqMult(mapf(amount, 0.0, 1.0, 0.6, 1.6))
	e.wobbliness = mapf(amount, 0.0, 1.0, 0.03, 0.0)
	e.osc.SetRandomization(mapf(amount, 0.0, 1.0, 0.0, 0.08))
	e.formants.SetFormantRate(mapf(amount, 0.0, 1.0, 0.000000001, 0.008))
}

// SetFormantMult sets the slow-morph target for the formant frequency
// scale, mapping [0,1] onto [0.5,2.5].
func (e *Engine) SetFormantMult(amount float32) {
	e.targetFormantFreqMult = mapf(amount, 0.0, 1.0, 0.5, 2.5)
}

// SetDutyRandomTarget sets the slow-morph target for pulse width
// randomization, mapping [0,1] onto [0,0.95].
func (e *Engine) SetDutyRandomTarget(amount float32) {
	e.targetDutyRand = mapf(amount, 0.0, 1.0, 0.0, 0.95)
}

// UpdateVoiceCharacter advances the slow character morph one step and
// applies it to the oscillator and formant filter. Call at control rate
// alongside Process when the morph targets are in use.
func (e *Engine) UpdateVoiceCharacter() {
	e.formantFreqMult += (e.targetFormantFreqMult - e.formantFreqMult) * 0.02
	e.dutyRand += (e.targetDutyRand - e.dutyRand) * 0.02
	e.formants.SetFreqMult(e.formantFreqMult)
	e.osc.SetRandomization(e.dutyRand)
}

package vocal

import "math/rand"

// dutyRefreshPeriod is how many generated samples a rolled duty cycle lasts.
const dutyRefreshPeriod = 5

// PulseOscillator produces a band-limited rectangular wave. The caller owns
// the phase accumulator; the oscillator owns the duty cycle, which can be
// rerolled around its base value at a fixed refresh period.
type PulseOscillator struct {
	baseDuty       float32
	randomization  float32
	currentDuty    float32
	refreshCounter int
	rng            *rand.Rand
}

// Init binds the random source and restores the default duty cycle.
func (p *PulseOscillator) Init(rng *rand.Rand) {
	p.rng = rng
	p.baseDuty = 0.5
	p.currentDuty = 0.5
	p.randomization = 0
	p.refreshCounter = 0
}

// SetBaseDutyCycle sets the nominal duty cycle, clamped to [0,1].
func (p *PulseOscillator) SetBaseDutyCycle(duty float32) {
	p.baseDuty = clampf(duty, 0.0, 1.0)
	p.rollDutyCycle()
}

// SetRandomization sets how far the duty cycle may wander from its base,
// clamped to [0,1]. At 1.0 the reroll spans +-30% of full scale.
func (p *PulseOscillator) SetRandomization(amount float32) {
	p.randomization = clampf(amount, 0.0, 1.0)
	p.rollDutyCycle()
}

// DutyCycle returns the duty cycle currently in effect.
func (p *PulseOscillator) DutyCycle() float32 {
	return p.currentDuty
}

// Generate produces one band-limited sample for the given phase in [0,1) and
// per-sample phase increment.
func (p *PulseOscillator) Generate(phase, phaseIncrement float32) float32 {
	if p.refreshCounter--; p.refreshCounter <= 0 {
		p.rollDutyCycle()
		p.refreshCounter = dutyRefreshPeriod
	}

	var sample float32
	if phase < p.currentDuty {
		sample = 1.0
	} else {
		sample = -1.0
	}

	// Correct the rising edge at phase 0 and the falling edge at the duty
	// threshold.
	sample += polyBlep(phase, phaseIncrement)
	t := phase - p.currentDuty
	if t < 0 {
		t += 1.0
	}
	sample -= polyBlep(t, phaseIncrement)

	return sample
}

func (p *PulseOscillator) rollDutyCycle() {
	if p.randomization > 0 {
		offset := (p.rng.Float32()*2.0 - 1.0) * 0.3 * p.randomization
		p.currentDuty = clampf(p.baseDuty+offset, 0.1, 0.9)
	} else {
		p.currentDuty = p.baseDuty
	}
}

// polyBlep is the polynomial band-limited step correction for a discontinuity
// at t=0, with t in [0,1) phases and dt the per-sample phase increment. It is
// zero for points farther than one sample period from the edge.
func polyBlep(t, dt float32) float32 {
	if dt == 0 {
		return 0
	}
	if t >= 1.0 {
		t -= 1.0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1.0
	}
	if t > 1.0-dt {
		t = (t - 1.0) / dt
		return t*t + t + t + 1.0
	}
	return 0
}

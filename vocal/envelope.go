package vocal

// envelopeStage tracks which ADSR segment is active.
type envelopeStage int

const (
	stageIdle envelopeStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// adsr is a linear attack/decay/sustain/release envelope. Segment times are
// in seconds and the level is advanced once per rendered sample.
type adsr struct {
	stage        envelopeStage
	value        float32
	attackTime   float32
	decayTime    float32
	sustainLevel float32
	releaseTime  float32
}

// start retriggers the envelope from zero.
func (e *adsr) start() {
	e.stage = stageAttack
	e.value = 0.0
}

// stop begins the release segment unless the envelope is already idle.
func (e *adsr) stop() {
	if e.stage != stageIdle {
		e.stage = stageRelease
	}
}

// step advances the level one sample and reports whether the envelope just
// finished its release.
func (e *adsr) step(sampleRate float32) bool {
	switch e.stage {
	case stageAttack:
		e.value += 1.0 / (e.attackTime * sampleRate)
		if e.value >= 1.0 {
			e.value = 1.0
			e.stage = stageDecay
		}
	case stageDecay:
		e.value -= (1.0 - e.sustainLevel) / (e.decayTime * sampleRate)
		if e.value <= e.sustainLevel {
			e.value = e.sustainLevel
			e.stage = stageSustain
		}
	case stageSustain:
		e.value = e.sustainLevel
	case stageRelease:
		e.value -= e.sustainLevel / (e.releaseTime * sampleRate)
		if e.value <= 0.0 {
			e.value = 0.0
			e.stage = stageIdle
			return true
		}
	default:
		e.value = 0.0
	}
	return false
}

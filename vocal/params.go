package vocal

// BlockSize is the number of oversampled output slots the engine fills per
// rendered sample. The hardware DAC runs at BlockSize times the engine rate.
const BlockSize = 4

// Frequency-select range: the pitch pot sweeps C1..C6 while the tune button
// is held.
const (
	MinFundamental = 32.70   // ~C1
	MaxFundamental = 1046.50 // ~C6
)

// Params holds every tunable engine parameter. Times are in seconds and are
// converted against SampleRate once at note rate, never per block.
type Params struct {
	SampleRate float32

	// Output
	OutputLevel float32
	DutyGain    float32 // post-chain makeup gain for narrow pulses

	// Oscillator
	BaseDutyCycle     float32
	DutyRandomization float32
	StartFrequency    float32 // initial fundamental (C3)
	FreqSmoothingRate float32 // per-sample fraction toward the target
	Wobbliness        float32 // detune range as a fraction of the base pitch
	LowpassCutoff     float32 // pre-formant tone filter
	FreqMult          float32 // scale-degree frequency multiplier

	// Formants
	QMult              float32
	FormantFreqMult    float32
	FormantRate        float32 // morph rate while the note opens
	ReleaseFormantRate float32 // morph rate during mouth closure
	WahMode            bool

	// Envelope
	AttackTime   float32
	DecayTime    float32
	SustainLevel float32
	ReleaseTime  float32

	// Vibrato
	VibratoRate    float32
	VibratoDepth   float32
	VibratoBuildup float32

	// Delay
	DelayTime     float32
	DelayFeedback float32
}

// NewDefaultParams returns the pedal's stock voicing.
func NewDefaultParams() *Params {
	return &Params{
		SampleRate:         16000,
		OutputLevel:        0.5,
		DutyGain:           3.8,
		BaseDutyCycle:      0.01,
		DutyRandomization:  0.0,
		StartFrequency:     130.81, // C3
		FreqSmoothingRate:  0.001,
		Wobbliness:         0.03,
		LowpassCutoff:      20000,
		FreqMult:           1.0,
		QMult:              4.0,
		FormantFreqMult:    0.75,
		FormantRate:        0.0001,
		ReleaseFormantRate: 0.001,
		WahMode:            false,
		AttackTime:         0.05,
		DecayTime:          0.2,
		SustainLevel:       0.8,
		ReleaseTime:        0.1,
		VibratoRate:        6.0,
		VibratoDepth:       0.12,
		VibratoBuildup:     1.8,
		DelayTime:          0.1,
		DelayFeedback:      0.1,
	}
}

package effects

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// Place is a plosive's place of articulation.
type Place int

const (
	PlaceBilabial Place = iota // /b/
	PlaceAlveolar              // /d/
	PlaceVelar                 // /g/
)

var placeNames = [...]string{"bilabial", "alveolar", "velar"}

func (p Place) String() string {
	if p < 0 || int(p) >= len(placeNames) {
		return "place(?)"
	}
	return placeNames[p]
}

// Burst describes one plosive: a low voicing bar during the closure, a
// place-shaped noise burst on the release, and a short voiced glide into
// the following vowel.
type Burst struct {
	Place       Place
	F0          float32 // voicing fundamental, Hz
	Amplitude   float32
	ClosureS    float32 // closure voicing bar, seconds
	BurstS      float32 // noise burst, seconds
	TransitionS float32 // vowel onset glide, seconds
}

func (b *Burst) Validate() error {
	if b.Place < PlaceBilabial || b.Place > PlaceVelar {
		return fmt.Errorf("unknown place: %d", int(b.Place))
	}
	if b.F0 <= 0 {
		return fmt.Errorf("fundamental must be > 0")
	}
	if b.Amplitude < 0 {
		return fmt.Errorf("amplitude must be >= 0")
	}
	if b.ClosureS < 0 {
		return fmt.Errorf("closure must be >= 0")
	}
	if b.BurstS <= 0 {
		return fmt.Errorf("burst duration must be > 0")
	}
	if b.TransitionS <= 0 {
		return fmt.Errorf("transition duration must be > 0")
	}
	return nil
}

type consonantState int

const (
	consonantIdle consonantState = iota
	consonantClosure
	consonantBurst
	consonantTransition
	consonantDone
)

// ConsonantGenerator streams synthetic plosives one sample at a time.
type ConsonantGenerator struct {
	sampleRate float32
	rng        *rand.Rand

	burst Burst
	state consonantState

	closureSamples    int
	burstSamples      int
	transitionSamples int

	counter int
	phase   float32
	tilt    float32
	filter  biquad.Section
}

// NewConsonantGenerator builds an idle generator. A nil rng gets a
// fixed-seed source so bursts are reproducible.
func NewConsonantGenerator(sampleRate float32, rng *rand.Rand) *ConsonantGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &ConsonantGenerator{sampleRate: sampleRate, rng: rng}
}

// Start arms a new plosive. The burst and transition must each span at
// least one sample at the generator's rate.
func (g *ConsonantGenerator) Start(b Burst) error {
	if err := b.Validate(); err != nil {
		return err
	}
	burstSamples := int(b.BurstS * g.sampleRate)
	transitionSamples := int(b.TransitionS * g.sampleRate)
	if burstSamples < 1 || transitionSamples < 1 {
		return fmt.Errorf("burst and transition too short at %g Hz", g.sampleRate)
	}

	g.burst = b
	g.closureSamples = int(b.ClosureS * g.sampleRate)
	g.burstSamples = burstSamples
	g.transitionSamples = transitionSamples
	g.state = consonantClosure
	g.counter = 0
	g.phase = 0.0
	g.tilt = transitionTilt(b.Place)
	g.filter = *biquad.NewSection(burstShape(b.Place))
	return nil
}

// Active reports whether a plosive is still sounding.
func (g *ConsonantGenerator) Active() bool {
	return g.state != consonantIdle && g.state != consonantDone
}

// Stop cuts the plosive short.
func (g *ConsonantGenerator) Stop() {
	g.state = consonantIdle
	g.counter = 0
	g.phase = 0.0
	g.filter.Reset()
}

// Process streams out one sample of the current plosive, or 0 when idle.
func (g *ConsonantGenerator) Process() float32 {
	if g.state == consonantIdle || g.state == consonantDone {
		return 0.0
	}

	var out float32
	switch g.state {
	case consonantClosure:
		out = g.closureSample()
		if g.counter >= g.closureSamples {
			g.counter = 0
			g.state = consonantBurst
		}
	case consonantBurst:
		out = g.burstSample()
		if g.counter >= g.burstSamples {
			g.counter = 0
			g.state = consonantTransition
		}
	case consonantTransition:
		out = g.transitionSample()
		if g.counter >= g.transitionSamples {
			g.counter = 0
			g.state = consonantDone
		}
	}
	g.counter++
	return out
}

// closureSample is the low voicing bar heard through the closed lips.
func (g *ConsonantGenerator) closureSample() float32 {
	s := g.burst.Amplitude * 0.1 * sinTwoPi(g.phase)
	g.advancePhase()
	return s
}

// burstSample is white noise shaped by the place-of-articulation filter
// with a linear fade.
func (g *ConsonantGenerator) burstSample() float32 {
	noise := g.rng.Float32()*2.0 - 1.0
	shaped := float32(g.filter.ProcessSample(float64(noise)))
	env := 1.0 - float32(g.counter)/float32(g.burstSamples)
	return g.burst.Amplitude * shaped * env
}

// transitionSample is voicing tilted by the place factor, fading toward
// the vowel that follows.
func (g *ConsonantGenerator) transitionSample() float32 {
	voice := g.burst.Amplitude * sinTwoPi(g.phase)
	voice *= 1.0 + g.tilt
	frac := float32(g.counter) / float32(g.transitionSamples)
	g.advancePhase()
	return voice * (1.0 - frac + 0.2)
}

func (g *ConsonantGenerator) advancePhase() {
	g.phase += g.burst.F0 / g.sampleRate
	if g.phase >= 1.0 {
		g.phase -= 1.0
	}
}

func sinTwoPi(phase float32) float32 {
	return float32(math.Sin(2.0 * math.Pi * float64(phase)))
}

// burstShape picks the fixed noise-shaping section for a place: low
// emphasis for /b/, mid for /d/, high for /g/.
func burstShape(p Place) biquad.Coefficients {
	switch p {
	case PlaceBilabial:
		return biquad.Coefficients{B0: 0.2, B1: 0.2, A1: -0.3}
	case PlaceAlveolar:
		return biquad.Coefficients{B0: 0.2, B2: -0.2, A1: -0.4, A2: 0.25}
	case PlaceVelar:
		return biquad.Coefficients{B0: 0.3, B2: -0.1, A1: -0.2, A2: 0.15}
	default:
		return biquad.Coefficients{B0: 1.0}
	}
}

func transitionTilt(p Place) float32 {
	switch p {
	case PlaceBilabial:
		return -0.2
	case PlaceAlveolar:
		return 0.0
	case PlaceVelar:
		return 0.2
	}
	return 0.0
}

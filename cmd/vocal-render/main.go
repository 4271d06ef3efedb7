package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/filter/moog"
	"github.com/cwbudde/algo-vocal/effects"
	"github.com/cwbudde/algo-vocal/internal/fitcommon"
	"github.com/cwbudde/algo-vocal/preset"
	"github.com/cwbudde/algo-vocal/vocal"
)

func main() {
	// Gesture flags
	duration := flag.Float64("duration", 2.0, "Seconds to hold the play switch")
	maxTail := flag.Float64("max-tail", 6.0, "Maximum ring-out seconds after release")
	pitch := flag.Float64("pitch", 0.5, "Pitch pot position 0..1")
	formant := flag.Float64("formant", 0.5, "Formant pot position 0..1")
	vibrato := flag.Float64("vibrato", 0.0, "Vibrato pot position 0..1")
	hold := flag.Bool("hold", false, "Latch the note instead of gating it")
	freqSelect := flag.Bool("freq-select", false, "Hold the tune button so the pitch pot sweeps C1..C6")
	consonant := flag.String("consonant", "", "Plosive onset: b, d or g")
	seed := flag.Int64("seed", 1, "Random seed")

	// Signal chain flags
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	analog := flag.Bool("analog", false, "Run the ladder-filter output stage")
	analogCutoff := flag.Float64("analog-cutoff", 6000.0, "Ladder cutoff in Hz")
	analogRes := flag.Float64("analog-res", 0.9, "Ladder resonance")
	analogDrive := flag.Float64("analog-drive", 1.6, "Ladder input drive")
	cabIR := flag.String("cab-ir", "", "Speaker IR WAV for cabinet convolution (optional)")
	eqLow := flag.Float64("eq-low", 0.0, "Low band gain in dB (250 Hz)")
	eqMid := flag.Float64("eq-mid", 0.0, "Mid band gain in dB (1.2 kHz)")
	eqHigh := flag.Float64("eq-high", 0.0, "High band gain in dB (4.5 kHz)")
	compress := flag.Bool("compress", false, "Run the compressor stage")
	compThreshold := flag.Float64("comp-threshold", 0.5, "Compressor threshold")
	compRatio := flag.Float64("comp-ratio", 4.0, "Compressor ratio")
	rate := flag.Int("rate", 16000, "Output WAV sample rate")
	output := flag.String("output", "vocal.wav", "Output WAV file path")
	flag.Parse()

	params := vocal.NewDefaultParams()
	if *presetPath != "" {
		var err error
		params, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *rate <= 0 {
		fmt.Fprintf(os.Stderr, "Error: rate must be > 0\n")
		os.Exit(1)
	}

	engineRate := int(params.SampleRate)
	rng := rand.New(rand.NewSource(*seed))
	eng := vocal.NewEngine(params, rng)

	var gen *effects.ConsonantGenerator
	if *consonant != "" {
		place, err := parsePlace(*consonant)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		gen = effects.NewConsonantGenerator(params.SampleRate, rng)
		burst := effects.Burst{
			Place:       place,
			F0:          params.StartFrequency,
			Amplitude:   0.5,
			ClosureS:    0.02,
			BurstS:      0.01,
			TransitionS: 0.04,
		}
		if err := gen.Start(burst); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting consonant: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Rendering %.2fs gesture (pitch %.2f, formant %.2f, vibrato %.2f) at %d Hz...\n",
		*duration, *pitch, *formant, *vibrato, *rate)

	// Gesture timing in engine frames. A latched note needs a second tap to
	// release, so the hold gesture appends one after a short gap.
	holdFrames := int(*duration * float64(engineRate))
	gapFrames := engineRate / 10
	tapFrames := engineRate / 20
	gestureFrames := holdFrames
	if *hold {
		gestureFrames = holdFrames + gapFrames + tapFrames
	}
	maxFrames := gestureFrames + int(*maxTail*float64(engineRate))

	pressedAt := func(frame int) bool {
		if frame < holdFrames {
			return true
		}
		if *hold && frame >= holdFrames+gapFrames && frame < holdFrames+gapFrames+tapFrames {
			return true
		}
		return false
	}

	// One engine sample is four upsampled DAC slots; slot 0 carries the
	// decimated 16 kHz audio stream.
	samples := make([]float32, 0, maxFrames)
	var block [vocal.BlockSize]float32
	frame := 0
	for frame < maxFrames {
		pressed := pressedAt(frame)
		eng.Process(&block, pressed,
			float32(*pitch), *hold, float32(*formant), float32(*vibrato), *freqSelect && pressed)
		s := block[0]
		if gen != nil && gen.Active() {
			s += gen.Process()
		}
		samples = append(samples, s)
		frame++

		if frame >= gestureFrames && !eng.Active() {
			break
		}
	}
	fmt.Printf("Ring-out stopped after %d frames (%.3fs)\n", frame, float64(frame)/float64(engineRate))

	if *eqLow != 0 || *eqMid != 0 || *eqHigh != 0 {
		var eq effects.ThreeBandEQ
		eq.Init(params.SampleRate)
		eq.SetBand(0, 250, 1.0, float32(*eqLow))
		eq.SetBand(1, 1200, 1.0, float32(*eqMid))
		eq.SetBand(2, 4500, 1.0, float32(*eqHigh))
		for i, s := range samples {
			// The three parallel bands sum to 3x at 0 dB; trim back to unity.
			samples[i] = eq.Process(s) * (1.0 / 3.0)
		}
	}

	if *compress {
		var comp effects.Compressor
		comp.Init(float32(*compThreshold), float32(*compRatio), 0.005, 0.08, params.SampleRate)
		for i, s := range samples {
			samples[i] = comp.Process(s)
		}
	}

	if *analog {
		ladder, err := moog.New(float64(engineRate),
			moog.WithVariant(moog.VariantHuovilainen),
			moog.WithCutoffHz(*analogCutoff),
			moog.WithResonance(*analogRes),
			moog.WithDrive(*analogDrive),
			moog.WithOversampling(4),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating ladder filter: %v\n", err)
			os.Exit(1)
		}
		for i, s := range samples {
			samples[i] = float32(ladder.ProcessSample(float64(s)))
		}
	}

	if *cabIR != "" {
		cab := effects.NewCabinet(engineRate)
		if err := cab.LoadIRWAV(*cabIR); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading cabinet IR: %v\n", err)
			os.Exit(1)
		}
		samples = cab.Process(samples)
	}

	if *rate != engineRate {
		wide, err := fitcommon.ResampleIfNeeded(fitcommon.Mono32To64(samples), engineRate, *rate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
		samples = fitcommon.Mono64To32(wide)
	}

	if err := fitcommon.WriteMonoWAV(*output, samples, *rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, len(samples))
}

func parsePlace(s string) (effects.Place, error) {
	switch strings.ToLower(s) {
	case "b":
		return effects.PlaceBilabial, nil
	case "d":
		return effects.PlaceAlveolar, nil
	case "g":
		return effects.PlaceVelar, nil
	}
	return 0, fmt.Errorf("unknown consonant %q (use b, d or g)", s)
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/cwbudde/algo-vocal/analysis"
	"github.com/cwbudde/algo-vocal/vocal"
)

// vowelReport is one vowel's measured formants next to its table targets.
type vowelReport struct {
	Vowel    string          `json:"vowel"`
	Target   [3]float64      `json:"target_hz"`
	Measured []analysis.Peak `json:"measured"`
	ErrorHz  []float64       `json:"error_hz"`
}

func main() {
	duration := flag.Float64("duration", 0.5, "Seconds of steady tone per vowel")
	fundamental := flag.Float64("fundamental", 110.0, "Source pulse frequency in Hz")
	freqMult := flag.Float64("freq-mult", 1.0, "Formant frequency multiplier")
	qMult := flag.Float64("q-mult", 4.0, "Formant Q multiplier")
	fftSize := flag.Int("fft", 4096, "FFT size for the spectral envelope")
	jsonOut := flag.Bool("json", false, "Emit the report as JSON")
	flag.Parse()

	sampleRate := vocal.NewDefaultParams().SampleRate
	frames := int(*duration * float64(sampleRate))
	if frames < *fftSize {
		frames = *fftSize
	}

	reports := make([]vowelReport, 0, int(vocal.VowelCount))
	for v := vocal.Vowel(0); v < vocal.VowelCount; v++ {
		samples := renderVowel(v, sampleRate, frames, float32(*fundamental),
			float32(*freqMult), float32(*qMult))

		env, err := analysis.SpectralEnvelope(samples, int(sampleRate), *fftSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error measuring vowel %s: %v\n", v, err)
			os.Exit(1)
		}
		peaks := analysis.FormantPeaks(env, 3)

		freqs, _ := vocal.FormantTargets(vocal.VoiceNeutral, v)
		rep := vowelReport{Vowel: v.String()}
		for i, f := range freqs {
			rep.Target[i] = float64(f) * *freqMult
		}
		rep.Measured = peaks
		for i, p := range peaks {
			if i < len(rep.Target) {
				rep.ErrorHz = append(rep.ErrorHz, p.FreqHz-rep.Target[i])
			}
		}
		reports = append(reports, rep)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Formant probe: %d vowels, %.2fs each, pulse %.1f Hz, freq-mult %.2f\n\n",
		len(reports), *duration, *fundamental, *freqMult)
	fmt.Printf("%-6s  %-26s  %-26s  %s\n", "vowel", "target F1/F2/F3", "measured", "error")
	for _, rep := range reports {
		measured := make([]float64, 3)
		errs := make([]float64, 3)
		for i := 0; i < 3; i++ {
			if i < len(rep.Measured) {
				measured[i] = rep.Measured[i].FreqHz
				errs[i] = math.Abs(rep.Measured[i].FreqHz - rep.Target[i])
			} else {
				measured[i] = math.NaN()
				errs[i] = math.NaN()
			}
		}
		fmt.Printf("%-6s  %7.0f %7.0f %7.0f    %7.0f %7.0f %7.0f    %5.0f %5.0f %5.0f\n",
			rep.Vowel,
			rep.Target[0], rep.Target[1], rep.Target[2],
			measured[0], measured[1], measured[2],
			errs[0], errs[1], errs[2])
	}
}

// renderVowel pushes a steady pulse train through the formant filter with
// the vowel's targets snapped in place (morph rate 1), no wah sweep, and no
// duty randomization, so the measured envelope reflects the table alone.
func renderVowel(v vocal.Vowel, sampleRate float32, frames int, fundamental, freqMult, qMult float32) []float64 {
	var osc vocal.PulseOscillator
	osc.Init(rand.New(rand.NewSource(1)))
	osc.SetBaseDutyCycle(0.5)

	var bank vocal.FormantFilter
	bank.Init(sampleRate)
	bank.SetFreqMult(freqMult)
	bank.SetQMult(qMult)
	bank.SetFormantRate(1.0)
	bank.SetVowel(v)
	bank.UpdateParameters()

	phaseIncrement := fundamental / sampleRate
	phase := float32(0.0)
	out := make([]float64, frames)
	for i := range out {
		phase += phaseIncrement
		if phase >= 1.0 {
			phase -= 1.0
		}
		out[i] = float64(bank.Process(osc.Generate(phase, phaseIncrement)))
	}
	return out
}

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cwbudde/algo-vocal/analysis"
	"github.com/cwbudde/algo-vocal/internal/fitcommon"
	"github.com/cwbudde/algo-vocal/preset"
	"github.com/cwbudde/algo-vocal/vocal"
	"github.com/cwbudde/mayfly"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

type topCandidate struct {
	Eval       int                `json:"eval"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

type runReport struct {
	ReferencePath   string             `json:"reference_path"`
	PresetPath      string             `json:"preset_path,omitempty"`
	OutputPreset    string             `json:"output_preset"`
	SampleRate      int                `json:"sample_rate"`
	FFTSize         int                `json:"fft_size"`
	DurationSec     float64            `json:"elapsed_seconds"`
	Evaluations     int                `json:"evaluations"`
	MayflyVariant   string             `json:"mayfly_variant"`
	BestScore       float64            `json:"best_score"`
	BestSimilarity  float64            `json:"best_similarity"`
	BestMetrics     analysis.Metrics   `json:"best_metrics"`
	BestKnobs       map[string]float64 `json:"best_knobs"`
	CheckpointCount int                `json:"checkpoint_count"`
	TopCandidates   []topCandidate     `json:"top_candidates,omitempty"`
}

// fitted is one candidate decoded into synthesis parameters.
type fitted struct {
	f0, f1, f2, f3 float32
	q1, q2, q3     float32
	freqMult       float32
	qMult          float32
	mix2, mix3     float32
}

func main() {
	referencePath := flag.String("reference", "reference/vowel.wav", "Reference vowel WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	outputPreset := flag.String("output-preset", "assets/presets/fitted-vowel.json", "Path to write the fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	fftSize := flag.Int("fft-size", 2048, "Envelope FFT size")
	fitSeconds := flag.Float64("fit-seconds", 0.6, "Render length per evaluation in seconds")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 4000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 25, "Print progress every N evaluations")
	checkpointEvery := flag.Int("checkpoint-every", 1, "Write checkpoint every N best-score improvements")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	resume := flag.Bool("resume", true, "Resume from a previous best_knobs report when available")
	resumeReport := flag.String("resume-report", "", "Optional report JSON path to resume from (default: current report path)")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 220, "Target eval budget per Mayfly round")
	flag.Parse()

	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *fitSeconds < 0.2 {
		*fitSeconds = 0.2
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *checkpointEvery < 1 {
		*checkpointEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}

	base := vocal.NewDefaultParams()
	if *presetPath != "" {
		var err error
		base, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}
	engineRate := int(base.SampleRate)

	ref, refSR, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, refSR, engineRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}
	refEnv, err := analysis.SpectralEnvelope(ref, engineRate, *fftSize)
	if err != nil {
		die("failed to measure reference envelope: %v", err)
	}

	defs, initCand := initKnobs(base)
	if *resume {
		resumePath := *resumeReport
		if resumePath == "" {
			if *reportPath != "" {
				resumePath = *reportPath
			} else {
				resumePath = *outputPreset + ".report.json"
			}
		}
		if resumed, ok, err := loadCandidateFromReport(resumePath, defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", resumePath, err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", resumePath)
		}
	}

	evaluate := func(c candidate) (analysis.Metrics, error) {
		k := applyCandidate(defs, c)
		mono, err := renderVowel(base, k, *fitSeconds)
		if err != nil {
			return analysis.Metrics{}, err
		}
		env, err := analysis.SpectralEnvelope(mono, engineRate, *fftSize)
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(refEnv, env), nil
	}

	start := time.Now()
	deadline := start.Add(time.Duration(*timeBudget * float64(time.Second)))
	evals := 0
	bestImproves := 0
	checkpoints := 0
	top := make([]topCandidate, 0, *topK)

	best := initCand
	bestM, err := evaluate(best)
	if err != nil {
		die("initial evaluation failed: %v", err)
	}
	evals++
	top = updateTopCandidates(top, *topK, evals, bestM, defs, best)
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", bestM.Score, bestM.Similarity*100.0)

	round := 0
	for evals < *maxEvals && time.Now().Before(deadline) {
		round++
		remaining := *maxEvals - evals
		budget := minInt(*mayflyRoundEvals, remaining)
		iters := maxInt(1, budget/(2*(*mayflyPop)))

		cfg, err := newMayflyConfig(strings.ToLower(*mayflyVariant), *mayflyPop, len(defs), iters)
		if err != nil {
			die("invalid mayfly variant: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))

		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return bestM.Score + 1.0
			}
			cand := fromNormalized(pos, defs)
			m, err := evaluate(cand)
			evals++
			if err != nil {
				return bestM.Score + 0.8
			}

			top = updateTopCandidates(top, *topK, evals, m, defs, cand)

			if m.Score < bestM.Score {
				best = cand
				bestM = m
				bestImproves++
				fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%%\n",
					bestImproves, evals, bestM.Score, bestM.Similarity*100.0)
				if bestImproves%*checkpointEvery == 0 {
					if err := writeOutputs(*outputPreset, *reportPath, *referencePath, *presetPath,
						engineRate, *fftSize, time.Since(start).Seconds(), evals,
						strings.ToLower(*mayflyVariant), defs, best, bestM, checkpoints+1, top); err != nil {
						fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
					} else {
						checkpoints++
					}
				}
			}

			if evals%*reportEvery == 0 {
				fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n",
					round, evals, time.Since(start).Seconds(), bestM.Score)
			}
			return m.Score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			continue
		}
	}

	elapsed := time.Since(start).Seconds()
	if err := writeOutputs(*outputPreset, *reportPath, *referencePath, *presetPath,
		engineRate, *fftSize, elapsed, evals,
		strings.ToLower(*mayflyVariant), defs, best, bestM, checkpoints, top); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		evals, elapsed, bestM.Score, bestM.Similarity*100.0, strings.ToLower(*mayflyVariant))
}

func initKnobs(base *vocal.Params) ([]knobDef, candidate) {
	freqs, qs := vocal.FormantTargets(vocal.VoiceNeutral, vocal.VowelA)

	// Keep center * freq_mult under the 8 kHz Nyquist of the engine rate.
	defs := []knobDef{
		{Name: "f0", Min: 70, Max: 400},
		{Name: "f1", Min: 200, Max: 1000},
		{Name: "f2", Min: 500, Max: 2600},
		{Name: "f3", Min: 1800, Max: 3400},
		{Name: "q1", Min: 4, Max: 20},
		{Name: "q2", Min: 4, Max: 20},
		{Name: "q3", Min: 4, Max: 20},
		{Name: "freq_mult", Min: 0.5, Max: 2.0},
		{Name: "q_mult", Min: 0.5, Max: 8.0},
		{Name: "mix2", Min: 0.0, Max: 1.0},
		{Name: "mix3", Min: 0.0, Max: 1.0},
	}
	vals := []float64{
		float64(base.StartFrequency),
		float64(freqs[0]), float64(freqs[1]), float64(freqs[2]),
		float64(qs[0]), float64(qs[1]), float64(qs[2]),
		float64(base.FormantFreqMult),
		float64(base.QMult),
		0.4, 0.3,
	}
	for i := range vals {
		vals[i] = clamp(vals[i], defs[i].Min, defs[i].Max)
	}
	return defs, candidate{Vals: vals}
}

func applyCandidate(defs []knobDef, c candidate) fitted {
	var k fitted
	for i, def := range defs {
		v := float32(c.Vals[i])
		switch def.Name {
		case "f0":
			k.f0 = v
		case "f1":
			k.f1 = v
		case "f2":
			k.f2 = v
		case "f3":
			k.f3 = v
		case "q1":
			k.q1 = v
		case "q2":
			k.q2 = v
		case "q3":
			k.q3 = v
		case "freq_mult":
			k.freqMult = v
		case "q_mult":
			k.qMult = v
		case "mix2":
			k.mix2 = v
		case "mix3":
			k.mix3 = v
		}
	}
	return k
}

// renderVowel synthesizes a steady vowel through the pedal's oscillator,
// tone filter and formant stages with the candidate's tuning. The duty
// randomization is off so every evaluation renders the same way.
func renderVowel(base *vocal.Params, k fitted, seconds float64) ([]float64, error) {
	sampleRate := base.SampleRate
	rng := rand.New(rand.NewSource(1))

	var osc vocal.PulseOscillator
	osc.Init(rng)
	osc.SetBaseDutyCycle(base.BaseDutyCycle)
	osc.SetRandomization(0.0)

	var tone vocal.OnePoleLowpass
	tone.Init(base.LowpassCutoff, sampleRate, 0.0)

	var ff vocal.FormantFilter
	ff.Init(sampleRate)
	ff.SetFreqMult(k.freqMult)
	ff.SetQMult(k.qMult)
	ff.SetTargets([3]float32{k.f1, k.f2, k.f3}, [3]float32{k.q1, k.q2, k.q3})
	ff.SetStageMix([3]float32{1.0, k.mix2, k.mix3})
	ff.SetFormantRate(1.0)
	ff.UpdateParameters()

	n := int(float64(sampleRate) * seconds)
	inc := k.f0 / sampleRate
	phase := float32(0.0)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		phase += inc
		if phase >= 1.0 {
			phase -= 1.0
		}
		s := osc.Generate(phase, inc)
		s = tone.Process(s)
		s = ff.Process(s)
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("render went non-finite at sample %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func updateTopCandidates(top []topCandidate, topK int, eval int, metrics analysis.Metrics, defs []knobDef, cand candidate) []topCandidate {
	entry := topCandidate{
		Eval:       eval,
		Score:      metrics.Score,
		Similarity: metrics.Similarity,
		Knobs:      make(map[string]float64, len(defs)),
	}
	for i, d := range defs {
		entry.Knobs[d.Name] = cand.Vals[i]
	}
	top = append(top, entry)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if len(top) > topK {
		top = top[:topK]
	}
	return top
}

func writeOutputs(
	outputPreset string,
	reportPath string,
	referencePath string,
	presetPath string,
	sampleRate int,
	fftSize int,
	elapsed float64,
	evals int,
	variant string,
	defs []knobDef,
	best candidate,
	bestM analysis.Metrics,
	checkpoints int,
	top []topCandidate,
) error {
	k := applyCandidate(defs, best)
	if err := writePresetJSON(outputPreset, k); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = best.Vals[i]
	}

	rep := runReport{
		ReferencePath:   referencePath,
		PresetPath:      presetPath,
		OutputPreset:    outputPreset,
		SampleRate:      sampleRate,
		FFTSize:         fftSize,
		DurationSec:     elapsed,
		Evaluations:     evals,
		MayflyVariant:   variant,
		BestScore:       bestM.Score,
		BestSimilarity:  bestM.Similarity,
		BestMetrics:     bestM,
		BestKnobs:       knobs,
		CheckpointCount: checkpoints,
		TopCandidates:   top,
	}

	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

// writePresetJSON stores the preset-expressible slice of the fit: the
// fundamental and the two multipliers. The raw formant row lives in the
// report's best_knobs.
func writePresetJSON(path string, k fitted) error {
	type out struct {
		StartFrequency  float32 `json:"start_frequency"`
		FormantFreqMult float32 `json:"formant_freq_mult"`
		QMult           float32 `json:"q_mult"`
	}
	return writeJSON(path, out{
		StartFrequency:  k.f0,
		FormantFreqMult: k.freqMult,
		QMult:           k.qMult,
	})
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = clamp(v, d.Min, d.Max)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

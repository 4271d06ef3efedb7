package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	algofft "github.com/cwbudde/algo-fft"
)

// Envelope is an averaged magnitude spectrum in dB, with bins spaced
// linearly from DC to Nyquist.
type Envelope struct {
	SampleRate int       `json:"sample_rate"`
	FFTSize    int       `json:"fft_size"`
	MagDB      []float64 `json:"mag_db"`
}

// BinHz returns the frequency width of one envelope bin.
func (e Envelope) BinHz() float64 {
	if e.FFTSize <= 0 {
		return 0
	}
	return float64(e.SampleRate) / float64(e.FFTSize)
}

// SpectralEnvelope measures the average Hann-windowed magnitude spectrum
// of samples, hopping by half the FFT size. Input shorter than one frame
// is zero-padded into a single frame.
func SpectralEnvelope(samples []float64, sampleRate, fftSize int) (Envelope, error) {
	if sampleRate <= 0 {
		return Envelope{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if len(samples) == 0 {
		return Envelope{}, fmt.Errorf("no samples")
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return Envelope{}, fmt.Errorf("create FFT plan: %w", err)
	}

	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
	}

	bins := fftSize/2 + 1
	spec := make([]complex128, bins)
	buf := make([]float64, fftSize)
	sum := make([]float64, bins)

	hop := fftSize / 2
	frames := 0
	for pos := 0; pos+fftSize <= len(samples); pos += hop {
		for i := 0; i < fftSize; i++ {
			buf[i] = samples[pos+i] * window[i]
		}
		plan.Forward(spec, buf)
		for k := 0; k < bins; k++ {
			sum[k] += cmplx.Abs(spec[k])
		}
		frames++
	}
	if frames == 0 {
		for i := range buf {
			buf[i] = 0
		}
		for i := 0; i < len(samples); i++ {
			buf[i] = samples[i] * window[i]
		}
		plan.Forward(spec, buf)
		for k := 0; k < bins; k++ {
			sum[k] = cmplx.Abs(spec[k])
		}
		frames = 1
	}

	env := Envelope{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		MagDB:      make([]float64, bins),
	}
	inv := 1.0 / float64(frames)
	for k := 0; k < bins; k++ {
		env.MagDB[k] = linToDB(sum[k] * inv)
	}
	return env, nil
}

// Peak is one local maximum of a spectral envelope.
type Peak struct {
	FreqHz float64 `json:"freq_hz"`
	MagDB  float64 `json:"mag_db"`
}

// Vowel formants live below 4 kHz; peaks closer together than 200 Hz are
// harmonics of the same resonance rather than separate formants.
const (
	formantCeilingHz   = 4000.0
	formantMinSpacedHz = 200.0
)

// FormantPeaks picks the n strongest local maxima of env below 4 kHz,
// keeping picks at least 200 Hz apart, and returns them in ascending
// frequency order.
func FormantPeaks(env Envelope, n int) []Peak {
	binHz := env.BinHz()
	if n <= 0 || binHz <= 0 || len(env.MagDB) < 3 {
		return nil
	}
	limit := int(formantCeilingHz / binHz)
	if limit > len(env.MagDB)-1 {
		limit = len(env.MagDB) - 1
	}

	var found []Peak
	for k := 1; k < limit; k++ {
		if env.MagDB[k] > env.MagDB[k-1] && env.MagDB[k] >= env.MagDB[k+1] {
			found = append(found, Peak{FreqHz: float64(k) * binHz, MagDB: env.MagDB[k]})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].MagDB > found[j].MagDB })

	picked := make([]Peak, 0, n)
	for _, cand := range found {
		crowded := false
		for _, p := range picked {
			if math.Abs(p.FreqHz-cand.FreqHz) < formantMinSpacedHz {
				crowded = true
				break
			}
		}
		if crowded {
			continue
		}
		picked = append(picked, cand)
		if len(picked) == n {
			break
		}
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].FreqHz < picked[j].FreqHz })
	return picked
}

// Metrics contains objective distance measurements between two spectral
// envelopes.
type Metrics struct {
	Bins        int     `json:"bins"`
	LevelDiffDB float64 `json:"level_diff_db"`
	RMSEDB      float64 `json:"rmse_db"`
	Score       float64 `json:"score"`
	Similarity  float64 `json:"similarity"`
}

// Envelope shape above 5 kHz is dominated by the anti-alias filter and
// carries no vowel identity.
const compareCeilingHz = 5000.0

// Compare measures how far cand is from ref below 5 kHz, after removing
// the overall level difference. Score is 0 for identical envelopes and
// saturates at 1; Similarity maps Score to (0, 1] with 1 meaning equal.
// Envelopes with mismatched bin spacing come back with Score 1.
func Compare(ref, cand Envelope) Metrics {
	var m Metrics
	binHz := ref.BinHz()
	if binHz <= 0 || len(ref.MagDB) == 0 || len(cand.MagDB) == 0 ||
		math.Abs(binHz-cand.BinHz()) > 1e-9 {
		m.Score = 1.0
		return m
	}

	limit := int(compareCeilingHz / binHz)
	n := len(ref.MagDB)
	if len(cand.MagDB) < n {
		n = len(cand.MagDB)
	}
	if limit > n-1 {
		limit = n - 1
	}
	if limit < 2 {
		m.Score = 1.0
		return m
	}

	// Bin 0 is DC; skip it so offsets there cannot skew the level estimate.
	var offset float64
	for k := 1; k <= limit; k++ {
		offset += cand.MagDB[k] - ref.MagDB[k]
	}
	offset /= float64(limit)

	var sumSq float64
	for k := 1; k <= limit; k++ {
		d := cand.MagDB[k] - ref.MagDB[k] - offset
		sumSq += d * d
	}

	m.Bins = limit
	m.LevelDiffDB = offset
	m.RMSEDB = math.Sqrt(sumSq / float64(limit))
	m.Score = clamp01(m.RMSEDB / 30.0)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

func linToDB(x float64) float64 {
	return 20.0 * math.Log10(math.Max(x, 1e-12))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

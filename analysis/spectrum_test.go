package analysis

import (
	"math"
	"testing"
)

func TestSpectralEnvelopeFindsTone(t *testing.T) {
	const (
		sr      = 16000
		fftSize = 2048
	)
	// 1000 Hz sits exactly on bin 128 at this size.
	x := makeSine(sr, 1000.0, 8192)
	env, err := SpectralEnvelope(x, sr, fftSize)
	if err != nil {
		t.Fatalf("SpectralEnvelope() error: %v", err)
	}
	if got, want := len(env.MagDB), fftSize/2+1; got != want {
		t.Fatalf("envelope bins = %d, want %d", got, want)
	}

	best := 0
	for k := range env.MagDB {
		if env.MagDB[k] > env.MagDB[best] {
			best = k
		}
	}
	if best != 128 {
		t.Fatalf("strongest bin = %d (%.1f Hz), want 128", best, float64(best)*env.BinHz())
	}

	peaks := FormantPeaks(env, 1)
	if len(peaks) != 1 {
		t.Fatalf("expected one picked peak, got %d", len(peaks))
	}
	if math.Abs(peaks[0].FreqHz-1000.0) > env.BinHz() {
		t.Fatalf("peak frequency = %.2f Hz, want 1000", peaks[0].FreqHz)
	}
}

func TestSpectralEnvelopeZeroPadsShortInput(t *testing.T) {
	x := make([]float64, 300)
	for i := range x {
		x[i] = 1.0
	}
	env, err := SpectralEnvelope(x, 16000, 1024)
	if err != nil {
		t.Fatalf("SpectralEnvelope() error: %v", err)
	}
	if got, want := len(env.MagDB), 513; got != want {
		t.Fatalf("envelope bins = %d, want %d", got, want)
	}
	if env.MagDB[0] <= env.MagDB[300] {
		t.Fatalf("expected DC to dominate a constant burst: dc=%f high=%f",
			env.MagDB[0], env.MagDB[300])
	}
	for k, v := range env.MagDB {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("bin %d is not finite: %f", k, v)
		}
	}
}

func TestSpectralEnvelopeRejectsBadInput(t *testing.T) {
	if _, err := SpectralEnvelope(makeSine(16000, 440, 4096), 0, 1024); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
	if _, err := SpectralEnvelope(nil, 16000, 1024); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestFormantPeaksSeparatesAndOrders(t *testing.T) {
	env := flatEnvelope(16000, 1600, -80.0) // 10 Hz bins
	env.MagDB[50] = -10.0                   // 500 Hz
	env.MagDB[56] = -12.0                   // 560 Hz, crowds the 500 Hz pick
	env.MagDB[80] = -20.0                   // 800 Hz
	env.MagDB[250] = -30.0                  // 2500 Hz
	env.MagDB[450] = 0.0                    // 4500 Hz, above the formant band

	peaks := FormantPeaks(env, 3)
	if len(peaks) != 3 {
		t.Fatalf("expected 3 peaks, got %d: %+v", len(peaks), peaks)
	}
	wantHz := []float64{500, 800, 2500}
	for i, p := range peaks {
		if math.Abs(p.FreqHz-wantHz[i]) > 1e-9 {
			t.Fatalf("peak %d at %.1f Hz, want %.1f", i, p.FreqHz, wantHz[i])
		}
	}

	// Asking for more peaks than the envelope holds returns what exists.
	if got := FormantPeaks(env, 10); len(got) != 3 {
		t.Fatalf("expected 3 peaks for oversized request, got %d", len(got))
	}
	if got := FormantPeaks(env, 0); got != nil {
		t.Fatalf("expected nil for zero request, got %+v", got)
	}
}

func TestCompareIdenticalEnvelopes(t *testing.T) {
	env := flatEnvelope(16000, 1024, -40.0)
	for k := range env.MagDB {
		env.MagDB[k] += 10.0 * math.Sin(float64(k)*0.05)
	}
	m := Compare(env, env)
	if m.RMSEDB != 0 {
		t.Fatalf("expected zero RMSE for identical envelopes, got %f", m.RMSEDB)
	}
	if m.Score != 0 {
		t.Fatalf("expected zero score for identical envelopes, got %f", m.Score)
	}
	if m.Similarity != 1 {
		t.Fatalf("expected similarity 1 for identical envelopes, got %f", m.Similarity)
	}
	if m.Bins <= 0 {
		t.Fatalf("expected compared bins to be reported, got %d", m.Bins)
	}
}

func TestCompareIgnoresOverallLevel(t *testing.T) {
	ref := flatEnvelope(16000, 1024, -40.0)
	for k := range ref.MagDB {
		ref.MagDB[k] += 6.0 * math.Cos(float64(k)*0.03)
	}
	cand := flatEnvelope(16000, 1024, -40.0)
	for k := range cand.MagDB {
		cand.MagDB[k] = ref.MagDB[k] + 6.0
	}
	m := Compare(ref, cand)
	if math.Abs(m.LevelDiffDB-6.0) > 1e-9 {
		t.Fatalf("level diff = %f dB, want 6", m.LevelDiffDB)
	}
	if m.RMSEDB > 1e-9 {
		t.Fatalf("expected level shift to leave no residual, got RMSE %f", m.RMSEDB)
	}
	if m.Score > 1e-9 {
		t.Fatalf("expected zero score after level removal, got %f", m.Score)
	}
}

func TestCompareScoresShapeDifference(t *testing.T) {
	ref := flatEnvelope(16000, 1024, -40.0)
	cand := flatEnvelope(16000, 1024, -40.0)
	// Tilt half the compared band up by 20 dB: offset removal leaves
	// deviations of +/-10 dB, so RMSE lands at 10 and score at 1/3.
	limit := int(compareCeilingHz / cand.BinHz())
	for k := limit / 2; k <= limit; k++ {
		cand.MagDB[k] += 20.0
	}
	m := Compare(ref, cand)
	if m.Score < 0.25 || m.Score > 0.45 {
		t.Fatalf("score = %f, want near 1/3", m.Score)
	}
	if m.Similarity > 0.5 {
		t.Fatalf("expected low similarity for a tilted band, got %f", m.Similarity)
	}
}

func TestCompareMismatchedBinsIsDegenerate(t *testing.T) {
	ref := flatEnvelope(16000, 1024, -40.0)
	cand := flatEnvelope(48000, 1024, -40.0)
	m := Compare(ref, cand)
	if m.Score != 1 {
		t.Fatalf("expected saturated score for mismatched bins, got %f", m.Score)
	}
	if m.Similarity != 0 {
		t.Fatalf("expected zero similarity for mismatched bins, got %f", m.Similarity)
	}

	m = Compare(Envelope{}, cand)
	if m.Score != 1 {
		t.Fatalf("expected saturated score for empty reference, got %f", m.Score)
	}
}

func makeSine(sr int, freq float64, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sr))
	}
	return x
}

func flatEnvelope(sr, fftSize int, level float64) Envelope {
	env := Envelope{
		SampleRate: sr,
		FFTSize:    fftSize,
		MagDB:      make([]float64, fftSize/2+1),
	}
	for k := range env.MagDB {
		env.MagDB[k] = level
	}
	return env
}

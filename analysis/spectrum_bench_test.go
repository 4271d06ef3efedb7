package analysis

import (
	"math"
	"testing"
)

func BenchmarkSpectralEnvelope(b *testing.B) {
	const (
		sr      = 16000
		fftSize = 2048
	)
	x := benchmarkVowelSignal(sr, sr)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = SpectralEnvelope(x, sr, fftSize)
	}
}

func BenchmarkFormantPeaks(b *testing.B) {
	const sr = 16000
	x := benchmarkVowelSignal(sr, sr)
	env, err := SpectralEnvelope(x, sr, 2048)
	if err != nil {
		b.Fatalf("SpectralEnvelope() error: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = FormantPeaks(env, 3)
	}
}

func BenchmarkCompare(b *testing.B) {
	const sr = 16000
	ref, err := SpectralEnvelope(benchmarkVowelSignal(sr, sr), sr, 2048)
	if err != nil {
		b.Fatalf("SpectralEnvelope() error: %v", err)
	}
	cand, err := SpectralEnvelope(benchmarkVowelSignal(sr, sr*2), sr, 2048)
	if err != nil {
		b.Fatalf("SpectralEnvelope() error: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compare(ref, cand)
	}
}

func benchmarkVowelSignal(sr, n int) []float64 {
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		x[i] = 0.5*math.Sin(2*math.Pi*730*t) +
			0.3*math.Sin(2*math.Pi*1090*t) +
			0.15*math.Sin(2*math.Pi*2440*t)
	}
	return x
}

package fitcommon

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWAVMonoRoundTrip(t *testing.T) {
	const (
		sr = 16000
		n  = 1600
	)
	src := make([]float32, n)
	for i := range src {
		src[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/sr))
	}

	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	if err := WriteMonoWAV(path, src, sr); err != nil {
		t.Fatalf("WriteMonoWAV: %v", err)
	}

	got, gotSR, err := ReadWAVMono(path)
	if err != nil {
		t.Fatalf("ReadWAVMono: %v", err)
	}
	if gotSR != sr {
		t.Fatalf("sample rate: got=%d want=%d", gotSR, sr)
	}
	if len(got) != n {
		t.Fatalf("length: got=%d want=%d", len(got), n)
	}
	for i := range got {
		if d := math.Abs(got[i] - float64(src[i])); d > 0.01 {
			t.Fatalf("sample %d drifted by %f after round trip", i, d)
		}
	}

	rms := MonoRMS(Mono64To32(got))
	if math.Abs(rms-0.5/math.Sqrt2) > 0.01 {
		t.Fatalf("round-trip RMS: got=%f want=%f", rms, 0.5/math.Sqrt2)
	}
}

func TestResampleIfNeededSameRateIsIdentity(t *testing.T) {
	in := []float64{0.1, -0.2, 0.3}
	out, err := ResampleIfNeeded(in, 16000, 16000)
	if err != nil {
		t.Fatalf("ResampleIfNeeded: %v", err)
	}
	if &out[0] != &in[0] {
		t.Fatalf("expected the input slice back for matching rates")
	}
}

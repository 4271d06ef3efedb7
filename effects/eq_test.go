package effects

import (
	"math"
	"testing"
)

func sineRMS(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestEQUnityGainSumsBands(t *testing.T) {
	var eq ThreeBandEQ
	eq.Init(16000)

	if got := eq.Process(0.5); got != 1.5 {
		t.Fatalf("fresh EQ: got=%f want=1.5", got)
	}

	eq.SetBand(0, 200, 1.0, 0.0)
	eq.SetBand(1, 1000, 2.0, 0.0)
	eq.SetBand(2, 4000, 0.7, 0.0)
	for i := 0; i < 100; i++ {
		in := float32(i%7) * 0.1
		if got := eq.Process(in); got != 3.0*in {
			t.Fatalf("flat bands at sample %d: got=%f want=%f", i, got, 3.0*in)
		}
	}
}

func TestEQBoostAndCutAtCenter(t *testing.T) {
	const (
		sampleRate = 16000
		freq       = 500.0
		n          = 4000
		window     = 1984 // 62 whole cycles
	)

	run := func(gainDB float32) float64 {
		var eq ThreeBandEQ
		eq.Init(sampleRate)
		eq.SetBand(0, freq, 2.0, gainDB)
		eq.SetBand(1, 2000, 2.0, 0.0)
		eq.SetBand(2, 6000, 2.0, 0.0)

		in := make([]float32, n)
		out := make([]float32, n)
		for i := range in {
			in[i] = float32(math.Sin(2.0 * math.Pi * freq * float64(i) / sampleRate))
			out[i] = eq.Process(in[i])
		}
		return sineRMS(out[n-window:]) / sineRMS(in[n-window:])
	}

	// One band peaks at 10^(dB/20); the two flat bands add unity each.
	boost := run(12.0)
	wantBoost := math.Pow(10, 12.0/20.0) + 2.0
	if math.Abs(boost-wantBoost) > 0.03*wantBoost {
		t.Fatalf("boost ratio: got=%f want=%f", boost, wantBoost)
	}

	cut := run(-12.0)
	wantCut := math.Pow(10, -12.0/20.0) + 2.0
	if math.Abs(cut-wantCut) > 0.03*wantCut {
		t.Fatalf("cut ratio: got=%f want=%f", cut, wantCut)
	}
}

func TestEQInvalidBandIgnored(t *testing.T) {
	var eq ThreeBandEQ
	eq.Init(16000)
	eq.SetBand(-1, 500, 2.0, 12.0)
	eq.SetBand(3, 500, 2.0, 12.0)

	if got := eq.Process(1.0); got != 3.0 {
		t.Fatalf("invalid band changed response: got=%f want=3", got)
	}
}

func TestEQResetClearsState(t *testing.T) {
	var eq ThreeBandEQ
	eq.Init(16000)
	eq.SetBand(0, 500, 5.0, 12.0)

	eq.Process(1.0)
	ringing := false
	for i := 0; i < 10; i++ {
		if eq.Process(0.0) != 0.0 {
			ringing = true
		}
	}
	if !ringing {
		t.Fatalf("boosted band has no impulse tail")
	}

	eq.Reset()
	if got := eq.Process(0.0); got != 0.0 {
		t.Fatalf("state survived reset: got=%f", got)
	}
}

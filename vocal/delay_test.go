package vocal

import (
	"math"
	"testing"
)

func TestDelayEchoArrivesOnTime(t *testing.T) {
	var d DelayEngine
	d.Init(16000)

	const delayTime = 0.01 // 160 samples
	out := make([]float32, 400)
	for i := range out {
		var x float32
		if i == 0 {
			x = 1.0
		}
		out[i] = d.Process(x, delayTime, 0.0)
	}

	if math.Abs(float64(out[0]-1.0)) > 1e-6 {
		t.Fatalf("dry sample: got=%f want=1.0", out[0])
	}
	for i := 1; i < 159; i++ {
		if math.Abs(float64(out[i])) > 1e-3 {
			t.Fatalf("pre-echo leakage at sample %d: got=%f", i, out[i])
		}
	}
	if math.Abs(float64(out[160]-1.0)) > 1e-3 {
		t.Fatalf("echo level at sample 160: got=%f want=1.0", out[160])
	}
	for i := 162; i < 319; i++ {
		if math.Abs(float64(out[i])) > 1e-3 {
			t.Fatalf("post-echo leakage at sample %d: got=%f", i, out[i])
		}
	}
}

func TestDelayFeedbackScalesRepeats(t *testing.T) {
	var d DelayEngine
	d.Init(16000)

	const delayTime = 0.01
	out := make([]float32, 520)
	for i := range out {
		var x float32
		if i == 0 {
			x = 1.0
		}
		out[i] = d.Process(x, delayTime, 0.5)
	}

	if math.Abs(float64(out[160]-1.0)) > 1e-3 {
		t.Fatalf("first repeat: got=%f want=1.0", out[160])
	}
	if math.Abs(float64(out[320]-0.5)) > 1e-3 {
		t.Fatalf("second repeat: got=%f want=0.5", out[320])
	}
	if math.Abs(float64(out[480]-0.25)) > 1e-3 {
		t.Fatalf("third repeat: got=%f want=0.25", out[480])
	}
}

func TestDelayAudibilityFollowsTail(t *testing.T) {
	var d DelayEngine
	d.Init(16000)

	if d.Audible() {
		t.Fatalf("fresh delay line should be silent")
	}

	d.Process(1.0, 0.01, 0.0)
	if !d.Audible() {
		t.Fatalf("impulse did not register as audible")
	}

	for i := 0; i < 159; i++ {
		d.Process(0.0, 0.01, 0.0)
	}
	if !d.Audible() {
		t.Fatalf("tail marked silent while echo still pending")
	}

	for i := 0; i < 40000; i++ {
		d.Process(0.0, 0.01, 0.0)
	}
	if d.Audible() {
		t.Fatalf("tail still audible after ring-out: peak=%f", d.peak)
	}
}

func TestDelayLongFeedbackTailRingsOut(t *testing.T) {
	var d DelayEngine
	d.Init(16000)

	for i := 0; i < 200000; i++ {
		var x float32
		if i == 0 {
			x = 1.0
		}
		out := d.Process(x, 0.01, 0.9)
		if math.IsNaN(float64(out)) || math.IsInf(float64(out), 0) {
			t.Fatalf("non-finite output at sample %d", i)
		}
	}
	if d.Audible() {
		t.Fatalf("feedback tail never rang out: peak=%f", d.peak)
	}
}

func TestDelayTinyTimePinsTapToTwoSamples(t *testing.T) {
	var d DelayEngine
	d.Init(1000)

	// A delay time far below one sample period must pin the tap at two
	// samples back; a shorter tap would reach past the read point into the
	// oldest slot of the line. Run past a full buffer wrap so a stale read
	// would surface as line content from a second ago.
	inputs := make([]float32, 2500)
	for i := range inputs {
		inputs[i] = float32(i % 37)
	}
	for i, x := range inputs {
		got := d.Process(x, 1e-5, 0.0)
		want := x
		if i >= 2 {
			want += inputs[i-2]
		}
		if math.Abs(float64(got-want)) > 1e-4 {
			t.Fatalf("sample %d: got=%f want=%f", i, got, want)
		}
	}
}

func TestDelayTimeClampedToCapacity(t *testing.T) {
	var d DelayEngine
	d.Init(16000)

	echoAt := int(d.maxDelay)
	out := make([]float32, echoAt+2)
	for i := range out {
		var x float32
		if i == 0 {
			x = 1.0
		}
		out[i] = d.Process(x, 2.0, 0.0)
	}
	if math.Abs(float64(out[echoAt]-1.0)) > 1e-3 {
		t.Fatalf("clamped echo level: got=%f want=1.0", out[echoAt])
	}
}

func TestDelayResetSilencesLine(t *testing.T) {
	var d DelayEngine
	d.Init(16000)

	d.Process(1.0, 0.01, 0.5)
	d.Reset()
	if d.Audible() {
		t.Fatalf("reset did not clear audibility")
	}
	for i := 0; i < 400; i++ {
		if out := d.Process(0.0, 0.01, 0.5); out != 0.0 {
			t.Fatalf("residual signal after reset at sample %d: got=%f", i, out)
		}
	}
}

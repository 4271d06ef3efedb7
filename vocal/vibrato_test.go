package vocal

import (
	"math"
	"testing"
)

func TestVibratoBuildupStaysBounded(t *testing.T) {
	var v Vibrato
	v.Init(16000)
	v.SetParameters(6.0, 0.12, 1.8)
	v.SetDepth(1.0)
	v.Trigger()

	for i := 0; i < 300000; i++ {
		out := v.Process(100.0)
		if v.currentDepth < 0 || v.currentDepth > v.depth {
			t.Fatalf("ramp out of bounds at sample %d: current=%f depth=%f",
				i, v.currentDepth, v.depth)
		}
		if out < 100.0*(1.0-maxVibratoDepth) || out > 100.0*(1.0+maxVibratoDepth) {
			t.Fatalf("modulated freq out of bounds at sample %d: got=%f", i, out)
		}
	}

	if v.buildingUp {
		t.Fatalf("buildup never completed: current=%f depth=%f", v.currentDepth, v.depth)
	}
	if v.currentDepth != v.depth {
		t.Fatalf("ramp did not settle: current=%f depth=%f", v.currentDepth, v.depth)
	}
}

func TestVibratoTriggerRestartsSwell(t *testing.T) {
	var v Vibrato
	v.Init(16000)
	v.SetParameters(6.0, 0.12, 1.8)
	v.SetDepth(1.0)
	v.Trigger()
	for i := 0; i < 300000; i++ {
		v.Process(100.0)
	}

	v.Trigger()
	if v.currentDepth != 0 {
		t.Fatalf("ramp not reset: got=%f", v.currentDepth)
	}
	if !v.buildingUp {
		t.Fatalf("buildup flag not set after trigger")
	}
	out := v.Process(100.0)
	if math.Abs(float64(out-100.0)) > 0.01 {
		t.Fatalf("first post-trigger sample should be nearly dry: got=%f", out)
	}
}

func TestVibratoDepthControlMapping(t *testing.T) {
	var v Vibrato
	v.Init(16000)

	v.SetDepth(0.5)
	if v.targetDepth != 0.125 {
		t.Fatalf("target depth: got=%f want=0.125", v.targetDepth)
	}

	v.SetParameters(6.0, 0.12, 0.0)
	if v.buildupTime != 0.01 {
		t.Fatalf("buildup time not pinned: got=%f", v.buildupTime)
	}
}

func TestVibratoModulatesAroundCarrier(t *testing.T) {
	var v Vibrato
	v.Init(16000)
	v.SetParameters(6.0, 0.25, 0.05)
	v.Trigger()

	// Skip the swell, then record two full LFO cycles.
	for i := 0; i < 32000; i++ {
		v.Process(200.0)
	}
	minOut, maxOut := float32(math.Inf(1)), float32(math.Inf(-1))
	var sum float64
	n := 2 * 16000 / 6
	for i := 0; i < n; i++ {
		out := v.Process(200.0)
		minOut = minf(minOut, out)
		maxOut = maxf(maxOut, out)
		sum += float64(out)
	}

	if maxOut < 200.0*1.2 {
		t.Fatalf("peak modulation too shallow: got=%f", maxOut)
	}
	if minOut > 200.0*0.8 {
		t.Fatalf("trough modulation too shallow: got=%f", minOut)
	}
	mean := sum / float64(n)
	if math.Abs(mean-200.0) > 4.0 {
		t.Fatalf("modulation not centered: mean=%f", mean)
	}

	if v.phase < 0 || v.phase >= 2.0*float32(math.Pi) {
		t.Fatalf("phase out of range: got=%f", v.phase)
	}
}

package device

// EdgeDetector tracks a boolean input across ticks and exposes the
// transition seen on the most recent Process call.
type EdgeDetector struct {
	current  bool
	previous bool
}

// Process feeds one sampled value.
func (d *EdgeDetector) Process(value bool) {
	d.previous = d.current
	d.current = value
}

func (d *EdgeDetector) Rising() bool  { return d.current && !d.previous }
func (d *EdgeDetector) Falling() bool { return !d.current && d.previous }
func (d *EdgeDetector) High() bool    { return d.current }
func (d *EdgeDetector) Low() bool     { return !d.current }

// Debouncer suppresses switch chatter: the output follows the input only
// after it has read the same for holdTicks consecutive samples.
type Debouncer struct {
	stable  bool
	last    bool
	ticks   int
	holdFor int
}

// Init sets the hold window in ticks and the initial settled value.
func (d *Debouncer) Init(holdTicks int, initial bool) {
	d.holdFor = holdTicks
	d.stable = initial
	d.last = initial
	d.ticks = holdTicks
}

// Process feeds one raw reading and returns the debounced value.
func (d *Debouncer) Process(raw bool) bool {
	if raw != d.last {
		d.last = raw
		d.ticks = 0
		return d.stable
	}
	if d.ticks < d.holdFor {
		d.ticks++
		if d.ticks >= d.holdFor {
			d.stable = raw
		}
	}
	return d.stable
}

// Frame is one control-tick snapshot of the pedal's inputs, debounced by
// the shell before it gets here.
type Frame struct {
	Play bool // voice button
	Tune bool // tune switch level; the contact is wired active-low
	Hold bool // loop switch position

	Pitch   float32 // pot 1
	Formant float32 // pot 2
	Vibrato float32 // pot 3

	StandbyRequest bool // host asked for low power
	ExpireWatchdog bool // host asked to stop feeding the watchdog
}

// EngineInputs maps the frame onto the synth engine's Process arguments.
func (f Frame) EngineInputs() (button bool, pitch float32, hold bool, formant, vibrato float32, freqSelect bool) {
	return f.Play, f.Pitch, f.Hold, f.Formant, f.Vibrato, !f.Tune
}

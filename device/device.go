package device

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Mode is the pedal's top-level state. The sampler pipeline modes are kept
// in the set so stored state and host tooling stay compatible, but they are
// reserved: recording is disabled in this build and Select refuses them.
type Mode int32

const (
	ModeIdle Mode = iota
	ModeSynth
	ModeRecord
	ModePlay
	ModeStop
	ModeSave
	ModeSaveErase
	ModeSaveBeginWrite
	ModeSaveWrite
	ModeSaveCommit
	ModeStandby
)

var modeNames = [...]string{
	"IDLE", "SYNTH", "RECORD", "PLAY", "STOP",
	"SAVE", "ERASE", "BEGIN_WRITE", "WRITE", "COMMIT",
	"STANDBY",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "MODE(?)"
	}
	return modeNames[m]
}

// Reserved reports whether the mode belongs to the disabled sampler
// pipeline.
func (m Mode) Reserved() bool {
	return m >= ModeRecord && m <= ModeSaveCommit
}

// ErrModeReserved is returned by Select for sampler pipeline modes.
var ErrModeReserved = errors.New("device: mode reserved for the sampler pipeline")

// Config holds the control-loop timing knobs. Ticks are ~1 ms apart.
type Config struct {
	IdleStandby      bool   // power down after sitting idle
	IdleStandbyTicks uint32 // idle ticks before the timeout fires
	ReleaseTicks     uint32 // inactive ticks before Synth falls back to Idle
}

// NewDefaultConfig returns the production timing: standby after five
// minutes of idling, and a 50 ms inactivity window on note release.
func NewDefaultConfig() *Config {
	return &Config{
		IdleStandby:      true,
		IdleStandbyTicks: 300 * 1000,
		ReleaseTicks:     50,
	}
}

// Hooks connect the state machine to the hardware shell. Nil hooks are
// skipped.
type Hooks struct {
	AnalogStart    func(withInput bool)
	AnalogStop     func()
	FlushSerial    func()
	Standby        func()
	ReloadWatchdog func()
}

// Machine runs the pedal's mode transitions once per control tick. The
// control loop is the only writer of the mode; the audio callback reads it
// through Mode at the top of every block. No locks anywhere.
type Machine struct {
	mode   atomic.Int32
	cfg    Config
	hooks  Hooks
	active func() bool

	// Logf, when set, receives transition and timeout reports. Leave nil
	// in the audio build; the control loop tolerates a slow sink.
	Logf func(format string, args ...any)

	play           EdgeDetector
	idleTicks      uint32
	releaseTicks   uint32
	expireWatchdog bool
}

// NewMachine builds a machine that wakes straight into Synth mode. active
// reports whether the synth engine is still sounding; a nil active is
// treated as never sounding. A nil cfg uses the production defaults.
func NewMachine(active func() bool, cfg *Config, hooks Hooks) *Machine {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if active == nil {
		active = func() bool { return false }
	}
	m := &Machine{cfg: *cfg, hooks: hooks, active: active}
	m.transition(ModeSynth)
	return m
}

// Mode returns the current mode. Safe to call from the audio callback.
func (m *Machine) Mode() Mode {
	return Mode(m.mode.Load())
}

// Select forces a mode from the host side. Reserved sampler modes are
// rejected with ErrModeReserved.
func (m *Machine) Select(mode Mode) error {
	if mode < ModeIdle || int(mode) >= len(modeNames) {
		return fmt.Errorf("device: unknown mode %d", int32(mode))
	}
	if mode.Reserved() {
		return ErrModeReserved
	}
	m.transition(mode)
	return nil
}

// Tick advances the state machine one control step.
func (m *Machine) Tick(in Frame) {
	m.play.Process(in.Play)

	if in.ExpireWatchdog {
		m.expireWatchdog = true
	}
	if !m.expireWatchdog && m.hooks.ReloadWatchdog != nil {
		m.hooks.ReloadWatchdog()
	}

	switch m.Mode() {
	case ModeIdle:
		standby := in.StandbyRequest
		if m.play.Rising() {
			if m.hooks.AnalogStart != nil {
				m.hooks.AnalogStart(true)
			}
			m.transition(ModeSynth)
		} else if m.cfg.IdleStandby {
			m.idleTicks++
			if m.idleTicks > m.cfg.IdleStandbyTicks {
				m.logf("idle timeout expired")
				standby = true
			}
		}
		if standby {
			m.transition(ModeStandby)
		}

	case ModeSynth:
		if !m.active() {
			m.releaseTicks++
			if m.releaseTicks >= m.cfg.ReleaseTicks {
				if m.hooks.AnalogStop != nil {
					m.hooks.AnalogStop()
				}
				m.transition(ModeIdle)
			}
		} else {
			m.releaseTicks = 0
		}

	case ModeStandby:
		// Terminal for this core: wake sources are hardware-side.
		if m.hooks.FlushSerial != nil {
			m.hooks.FlushSerial()
		}
		if m.hooks.AnalogStop != nil {
			m.hooks.AnalogStop()
		}
		if m.hooks.Standby != nil {
			m.hooks.Standby()
		}
	}
}

func (m *Machine) transition(mode Mode) {
	m.logf("state: %s", mode)
	switch mode {
	case ModeIdle:
		m.idleTicks = 0
	case ModeSynth:
		m.releaseTicks = 0
	}
	m.mode.Store(int32(mode))
}

func (m *Machine) logf(format string, args ...any) {
	if m.Logf != nil {
		m.Logf(format, args...)
	}
}

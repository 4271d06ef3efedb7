package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-vocal/device"
	"github.com/cwbudde/algo-vocal/vocal"
)

// File is the JSON schema for pedal presets. Every field is optional;
// absent fields keep their defaults.
type File struct {
	OutputLevel       *float32 `json:"output_level"`
	DutyGain          *float32 `json:"duty_gain"`
	BaseDutyCycle     *float32 `json:"base_duty_cycle"`
	DutyRandomization *float32 `json:"duty_randomization"`
	StartFrequency    *float32 `json:"start_frequency"`
	FreqSmoothingRate *float32 `json:"freq_smoothing_rate"`
	Wobbliness        *float32 `json:"wobbliness"`
	LowpassCutoff     *float32 `json:"lowpass_cutoff"`

	QMult              *float32 `json:"q_mult"`
	FormantFreqMult    *float32 `json:"formant_freq_mult"`
	FormantRate        *float32 `json:"formant_rate"`
	ReleaseFormantRate *float32 `json:"release_formant_rate"`
	WahMode            *bool    `json:"wah_mode"`

	AttackTime   *float32 `json:"attack_time"`
	DecayTime    *float32 `json:"decay_time"`
	SustainLevel *float32 `json:"sustain_level"`
	ReleaseTime  *float32 `json:"release_time"`

	VibratoRate    *float32 `json:"vibrato_rate"`
	VibratoDepth   *float32 `json:"vibrato_depth"`
	VibratoBuildup *float32 `json:"vibrato_buildup"`

	DelayTime     *float32 `json:"delay_time"`
	DelayFeedback *float32 `json:"delay_feedback"`

	IdleStandby  *bool    `json:"idle_standby"`
	IdleStandbyS *float32 `json:"idle_standby_s"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*vocal.Params, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := vocal.NewDefaultParams()
	if err := ApplyFile(p, f); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadFile parses a preset JSON file without applying it.
func ReadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *vocal.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.OutputLevel != nil {
		if *f.OutputLevel <= 0 {
			return fmt.Errorf("output_level must be > 0")
		}
		dst.OutputLevel = *f.OutputLevel
	}
	if f.DutyGain != nil {
		if *f.DutyGain <= 0 {
			return fmt.Errorf("duty_gain must be > 0")
		}
		dst.DutyGain = *f.DutyGain
	}
	if f.BaseDutyCycle != nil {
		if *f.BaseDutyCycle <= 0 || *f.BaseDutyCycle > 0.5 {
			return fmt.Errorf("base_duty_cycle must be in (0,0.5]")
		}
		dst.BaseDutyCycle = *f.BaseDutyCycle
	}
	if f.DutyRandomization != nil {
		if *f.DutyRandomization < 0 || *f.DutyRandomization > 0.95 {
			return fmt.Errorf("duty_randomization must be in [0,0.95]")
		}
		dst.DutyRandomization = *f.DutyRandomization
	}
	if f.StartFrequency != nil {
		if *f.StartFrequency < vocal.MinFundamental || *f.StartFrequency > vocal.MaxFundamental {
			return fmt.Errorf("start_frequency must be in [%.2f,%.2f]",
				vocal.MinFundamental, vocal.MaxFundamental)
		}
		dst.StartFrequency = *f.StartFrequency
	}
	if f.FreqSmoothingRate != nil {
		if *f.FreqSmoothingRate <= 0 || *f.FreqSmoothingRate > 1 {
			return fmt.Errorf("freq_smoothing_rate must be in (0,1]")
		}
		dst.FreqSmoothingRate = *f.FreqSmoothingRate
	}
	if f.Wobbliness != nil {
		if *f.Wobbliness < 0 || *f.Wobbliness > 1 {
			return fmt.Errorf("wobbliness must be in [0,1]")
		}
		dst.Wobbliness = *f.Wobbliness
	}
	if f.LowpassCutoff != nil {
		if *f.LowpassCutoff <= 0 {
			return fmt.Errorf("lowpass_cutoff must be > 0")
		}
		dst.LowpassCutoff = *f.LowpassCutoff
	}

	if f.QMult != nil {
		if *f.QMult <= 0 {
			return fmt.Errorf("q_mult must be > 0")
		}
		dst.QMult = *f.QMult
	}
	if f.FormantFreqMult != nil {
		if *f.FormantFreqMult < 0.5 || *f.FormantFreqMult > 2.5 {
			return fmt.Errorf("formant_freq_mult must be in [0.5,2.5]")
		}
		dst.FormantFreqMult = *f.FormantFreqMult
	}
	if f.FormantRate != nil {
		if *f.FormantRate <= 0 || *f.FormantRate > 1 {
			return fmt.Errorf("formant_rate must be in (0,1]")
		}
		dst.FormantRate = *f.FormantRate
	}
	if f.ReleaseFormantRate != nil {
		if *f.ReleaseFormantRate <= 0 || *f.ReleaseFormantRate > 1 {
			return fmt.Errorf("release_formant_rate must be in (0,1]")
		}
		dst.ReleaseFormantRate = *f.ReleaseFormantRate
	}
	if f.WahMode != nil {
		dst.WahMode = *f.WahMode
	}

	if f.AttackTime != nil {
		if *f.AttackTime <= 0 {
			return fmt.Errorf("attack_time must be > 0")
		}
		dst.AttackTime = *f.AttackTime
	}
	if f.DecayTime != nil {
		if *f.DecayTime <= 0 {
			return fmt.Errorf("decay_time must be > 0")
		}
		dst.DecayTime = *f.DecayTime
	}
	if f.SustainLevel != nil {
		if *f.SustainLevel < 0 || *f.SustainLevel > 1 {
			return fmt.Errorf("sustain_level must be in [0,1]")
		}
		dst.SustainLevel = *f.SustainLevel
	}
	if f.ReleaseTime != nil {
		if *f.ReleaseTime <= 0 {
			return fmt.Errorf("release_time must be > 0")
		}
		dst.ReleaseTime = *f.ReleaseTime
	}

	if f.VibratoRate != nil {
		if *f.VibratoRate <= 0 {
			return fmt.Errorf("vibrato_rate must be > 0")
		}
		dst.VibratoRate = *f.VibratoRate
	}
	if f.VibratoDepth != nil {
		if *f.VibratoDepth < 0 {
			return fmt.Errorf("vibrato_depth must be >= 0")
		}
		dst.VibratoDepth = *f.VibratoDepth
	}
	if f.VibratoBuildup != nil {
		if *f.VibratoBuildup <= 0 {
			return fmt.Errorf("vibrato_buildup must be > 0")
		}
		dst.VibratoBuildup = *f.VibratoBuildup
	}

	if f.DelayTime != nil {
		if *f.DelayTime <= 0 || *f.DelayTime > 1 {
			return fmt.Errorf("delay_time must be in (0,1]")
		}
		dst.DelayTime = *f.DelayTime
	}
	if f.DelayFeedback != nil {
		if *f.DelayFeedback < 0 || *f.DelayFeedback > 0.95 {
			return fmt.Errorf("delay_feedback must be in [0,0.95]")
		}
		dst.DelayFeedback = *f.DelayFeedback
	}
	return nil
}

// ApplyDeviceConfig applies the power-management fields onto a supervisor
// config. Timeouts are given in seconds and converted to 1 ms ticks.
func ApplyDeviceConfig(dst *device.Config, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	if f.IdleStandby != nil {
		dst.IdleStandby = *f.IdleStandby
	}
	if f.IdleStandbyS != nil {
		if *f.IdleStandbyS <= 0 {
			return fmt.Errorf("idle_standby_s must be > 0")
		}
		dst.IdleStandbyTicks = uint32(*f.IdleStandbyS * 1000)
	}
	return nil
}

// This file is part of Padcorder.
//
// Padcorder is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Padcorder is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Padcorder.  If not, see <https://www.gnu.org/licenses/>.

// Package config loads process configuration by layering defaults, an
// optional YAML file and PADCORDER_ environment variables, in that order
// of precedence.
package config

import (
	"time"

	"github.com/padcorder/padcorder/capture"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/interference"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/playback"
	"github.com/padcorder/padcorder/quantize"
)

// sentinal errors for the config package
const (
	BadValue  = "config: %s: %s"
	BadButton = "config: %s: %v"
)

// Config contains process configuration. All values are read once at
// construction time; the running session never rereads them.
type Config struct {
	// polling rate of the physical pad, in ticks per second
	PollingHz int `koanf:"polling_hz"`

	// index of the physical game controller to open
	Device int `koanf:"device"`

	// deadzone below which a raw stick sample reads as centred
	StickDeadzone float64 `koanf:"stick_deadzone"`

	// deadzone below which a raw trigger sample reads as released
	TriggerDeadzone float64 `koanf:"trigger_deadzone"`

	// number of discrete levels per stick axis. 3 gives the
	// left/centre/right set; higher odd numbers give finer steps
	QuantizeSteps int `koanf:"quantize_steps"`

	// playback looping
	Loop bool `koanf:"loop"`

	// number of passes when looping. -1 loops until stopped
	LoopCount int `koanf:"loop_count"`

	// how long live input must deviate from playback before it is
	// treated as the operator taking over
	DebounceMs int `koanf:"debounce_ms"`

	// minimum quantized axis distance that counts as a deviation
	AxisThreshold float64 `koanf:"axis_threshold"`

	// per recording event limit
	MaxEvents int `koanf:"max_events"`

	// where sequences are saved between runs
	TranscriptPath string `koanf:"transcript_path"`

	// save the transcript automatically after every commit
	Autosave bool `koanf:"autosave"`

	// operator control buttons, by name. these buttons drive the session
	// and are excluded from both capture comparison and interference
	// detection
	RecordButton   string `koanf:"record_button"`
	PlayButton     string `koanf:"play_button"`
	SlotUpButton   string `koanf:"slot_up_button"`
	SlotDownButton string `koanf:"slot_down_button"`

	// prometheus endpoint. empty disables the metrics server
	MetricsAddr string `koanf:"metrics_addr"`

	// echo log entries to stderr as they happen
	LogEcho bool `koanf:"log_echo"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		PollingHz:       500,
		Device:          0,
		StickDeadzone:   0.15,
		TriggerDeadzone: 0.05,
		QuantizeSteps:   3,
		Loop:            false,
		LoopCount:       -1,
		DebounceMs:      40,
		AxisThreshold:   0.25,
		MaxEvents:       capture.DefaultMaxEvents,
		TranscriptPath:  "padcorder.json",
		Autosave:        true,
		RecordButton:    "back",
		PlayButton:      "start",
		SlotUpButton:    "dpad_up",
		SlotDownButton:  "dpad_down",
		MetricsAddr:     "",
		LogEcho:         true,
	}
}

// Validate rejects configurations the session cannot run with.
func (c *Config) Validate() error {
	if c.PollingHz < 1 || c.PollingHz > 1000 {
		return fault.Errorf(BadValue, "polling_hz", "must be between 1 and 1000")
	}
	if c.StickDeadzone < 0.0 || c.StickDeadzone >= 1.0 {
		return fault.Errorf(BadValue, "stick_deadzone", "must be in [0.0, 1.0)")
	}
	if c.TriggerDeadzone < 0.0 || c.TriggerDeadzone >= 1.0 {
		return fault.Errorf(BadValue, "trigger_deadzone", "must be in [0.0, 1.0)")
	}
	if c.QuantizeSteps < 3 {
		return fault.Errorf(BadValue, "quantize_steps", "must be at least 3")
	}
	if c.DebounceMs < 1 {
		return fault.Errorf(BadValue, "debounce_ms", "must be at least 1")
	}
	if c.AxisThreshold <= 0.0 {
		return fault.Errorf(BadValue, "axis_threshold", "must be greater than 0.0")
	}
	if c.TranscriptPath == "" {
		return fault.Errorf(BadValue, "transcript_path", "must not be empty")
	}

	if _, err := c.ControlButtons(); err != nil {
		return err
	}

	return nil
}

// ControlButtons returns the mask of operator control buttons.
func (c *Config) ControlButtons() (pad.Buttons, error) {
	var mask pad.Buttons

	for _, f := range []struct {
		key  string
		name string
	}{
		{"record_button", c.RecordButton},
		{"play_button", c.PlayButton},
		{"slot_up_button", c.SlotUpButton},
		{"slot_down_button", c.SlotDownButton},
	} {
		b, err := pad.ParseButton(f.name)
		if err != nil {
			return 0, fault.Errorf(BadButton, f.key, err)
		}
		mask |= b
	}

	return mask, nil
}

// CapturePolicy derives the quantization policy for recording and for the
// live side of interference comparison.
func (c *Config) CapturePolicy() capture.Policy {
	return capture.Policy{
		StickDeadzone:   c.StickDeadzone,
		TriggerDeadzone: c.TriggerDeadzone,
		Levels:          quantize.Steps(c.QuantizeSteps),
		MaxEvents:       c.MaxEvents,
	}
}

// InterferencePolicy derives the interference detection policy. The
// operator control buttons are ignored so that driving the session is
// never mistaken for taking over.
func (c *Config) InterferencePolicy() (interference.Policy, error) {
	mask, err := c.ControlButtons()
	if err != nil {
		return interference.Policy{}, err
	}
	return interference.Policy{
		Debounce:      time.Duration(c.DebounceMs) * time.Millisecond,
		AxisThreshold: c.AxisThreshold,
		IgnoreButtons: mask,
	}, nil
}

// LoopConfig derives the playback loop configuration.
func (c *Config) LoopConfig() playback.Loop {
	return playback.Loop{
		Enabled: c.Loop,
		Count:   c.LoopCount,
	}
}

// PollingInterval returns the tick interval of the polling loop.
func (c *Config) PollingInterval() time.Duration {
	return time.Second / time.Duration(c.PollingHz)
}

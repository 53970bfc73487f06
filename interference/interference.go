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

// Package interference watches for a human touching the physical pad
// while a sequence is playing. Detection compares the live quantized state
// against the state most recently applied to the virtual pad, so replayed
// events never look like interference even when the physical and virtual
// pads share a device node.
//
// Only additional input counts as deviation: buttons held by the player
// that the playback is not holding, or a stick axis pulled away from the
// applied value by more than the configured threshold. A button the
// playback holds but the player does not is playback's doing, not the
// player's.
//
// A deviation must persist for the debounce window before the monitor
// fires. Once fired, the monitor stays quiet until it is armed again.
package interference

import (
	"time"

	"github.com/padcorder/padcorder/pad"
)

// DefaultDebounce is the deviation persistence window used when Policy
// leaves Debounce at zero.
const DefaultDebounce = 40 * time.Millisecond

// DefaultAxisThreshold is the minimum quantized axis distance that counts
// as a deviation when Policy leaves AxisThreshold at zero.
const DefaultAxisThreshold = 0.25

// Policy configures deviation detection.
type Policy struct {
	// how long a deviation must persist before the monitor fires
	Debounce time.Duration

	// minimum |live - applied| on any stick axis or trigger to count as
	// a deviation
	AxisThreshold float64

	// buttons that never count as deviation. the session puts its
	// operator control buttons here so that stopping playback does not
	// read as interference
	IgnoreButtons pad.Buttons
}

// Monitor is the interference state machine. Not safe for concurrent use.
type Monitor struct {
	policy Policy

	armed bool
	fired bool

	// when the current deviation streak began. zero when no streak
	since time.Time
}

// NewMonitor creates an interference monitor. A new monitor is disarmed.
func NewMonitor(policy Policy) *Monitor {
	if policy.Debounce <= 0 {
		policy.Debounce = DefaultDebounce
	}
	if policy.AxisThreshold <= 0 {
		policy.AxisThreshold = DefaultAxisThreshold
	}
	return &Monitor{policy: policy}
}

// Arm readies the monitor to fire. Called when playback starts.
func (mon *Monitor) Arm() {
	mon.armed = true
	mon.fired = false
	mon.since = time.Time{}
}

// Disarm quiets the monitor. Called when playback ends for any reason.
func (mon *Monitor) Disarm() {
	mon.armed = false
	mon.since = time.Time{}
}

// Check compares the live quantized state against the most recently
// applied state. Returns true exactly once per armed period, when a
// deviation has persisted for the debounce window.
func (mon *Monitor) Check(live pad.State, applied pad.State, now time.Time) bool {
	if !mon.armed || mon.fired {
		return false
	}

	if !deviates(live, applied, mon.policy) {
		mon.since = time.Time{}
		return false
	}

	if mon.since.IsZero() {
		mon.since = now
		return false
	}

	if now.Sub(mon.since) < mon.policy.Debounce {
		return false
	}

	mon.fired = true
	return true
}

func deviates(live pad.State, applied pad.State, p Policy) bool {
	// extra presses only. live&^applied is the set of buttons the player
	// holds that playback does not
	extra := (live.Buttons &^ applied.Buttons) &^ p.IgnoreButtons
	if extra != 0 {
		return true
	}

	return axisDeviates(live.LeftStick.X, applied.LeftStick.X, p.AxisThreshold) ||
		axisDeviates(live.LeftStick.Y, applied.LeftStick.Y, p.AxisThreshold) ||
		axisDeviates(live.RightStick.X, applied.RightStick.X, p.AxisThreshold) ||
		axisDeviates(live.RightStick.Y, applied.RightStick.Y, p.AxisThreshold) ||
		axisDeviates(live.Triggers.Left, applied.Triggers.Left, p.AxisThreshold) ||
		axisDeviates(live.Triggers.Right, applied.Triggers.Right, p.AxisThreshold)
}

func axisDeviates(live float64, applied float64, threshold float64) bool {
	d := live - applied
	if d < 0 {
		d = -d
	}
	return d >= threshold
}

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

// Package capture turns polling ticks into a stream of state-change
// events. Each tick is quantized and compared against the last emitted
// state; only a change produces an event. With a pad at rest a 1000Hz
// polling loop produces no events at all, while a 15ms button tap is still
// caught as two events.
//
// Capture imposes no minimum polling interval and tolerates irregular
// tick spacing. What it will not tolerate is time moving backwards: a tick
// whose clock reading would break the ascending-offset invariant is
// dropped and counted, which is reportable but never fatal.
package capture

import (
	"time"

	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/metrics"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/quantize"
	"github.com/padcorder/padcorder/sequence"
)

// DefaultMaxEvents is the per-recording event cap used when Policy leaves
// MaxEvents at zero.
const DefaultMaxEvents = 100000

// Policy is the quantization and capacity configuration for a recording.
// The same policy is used to quantize live samples during playback so that
// interference comparison happens in quantized space on both sides.
type Policy struct {
	StickDeadzone   float64
	TriggerDeadzone float64

	// the discrete level set for stick axes. nil means quantize.Ternary
	Levels []float64

	// recording stops when this many events have been captured. zero
	// means DefaultMaxEvents
	MaxEvents int
}

// Quantize reduces a raw sample to a quantized state snapshot according to
// the policy. Pure function; this is the only place raw axis values are
// interpreted.
func Quantize(smp driver.Sample, p Policy) pad.State {
	return pad.State{
		Buttons: smp.Buttons,
		LeftStick: pad.Stick{
			X: quantize.Axis(smp.LeftStick[0], p.StickDeadzone, p.Levels),
			Y: quantize.Axis(smp.LeftStick[1], p.StickDeadzone, p.Levels),
		},
		RightStick: pad.Stick{
			X: quantize.Axis(smp.RightStick[0], p.StickDeadzone, p.Levels),
			Y: quantize.Axis(smp.RightStick[1], p.StickDeadzone, p.Levels),
		},
		Triggers: pad.Triggers{
			Left:  quantize.Trigger(smp.Triggers[0], p.TriggerDeadzone, p.Levels),
			Right: quantize.Trigger(smp.Triggers[1], p.TriggerDeadzone, p.Levels),
		},
	}
}

// Recording accumulates state-change events from polling ticks. Not safe
// for concurrent use; the session drives it from the polling task only.
type Recording struct {
	policy Policy

	// the clock reading that marks offset zero
	start time.Time

	last    pad.State
	hasLast bool

	events []sequence.Event

	// number of ticks dropped because of a non-monotonic clock reading
	dropped int
}

// NewRecording starts a fresh capture stream. The start time is the clock
// reading that marks offset zero; it should come from the same monotonic
// clock as the samples.
func NewRecording(policy Policy, start time.Time) *Recording {
	if policy.MaxEvents <= 0 {
		policy.MaxEvents = DefaultMaxEvents
	}
	return &Recording{
		policy: policy,
		start:  start,
	}
}

// Tick processes one polling tick. Returns true if the tick produced an
// event.
func (rec *Recording) Tick(smp driver.Sample) bool {
	if rec.Full() {
		return false
	}

	offset := smp.Time.Sub(rec.start)

	// the ascending-offset invariant. a violation means the clock or the
	// tick ordering is misbehaving; the tick is dropped
	if offset < 0 || (len(rec.events) > 0 && offset <= rec.events[len(rec.events)-1].Offset) {
		rec.dropped++
		metrics.RecordTickDropped()
		logger.Logf(logger.Allow, "capture", "dropped out-of-order tick (offset %v)", offset)
		return false
	}

	state := Quantize(smp, rec.policy)

	// state-change encoding: an unchanged state produces nothing. the
	// very first tick always produces an event, establishing the initial
	// state
	if rec.hasLast && state == rec.last {
		return false
	}

	rec.events = append(rec.events, sequence.Event{
		Offset: offset,
		State:  state,
	})
	rec.last = state
	rec.hasLast = true
	metrics.RecordEventCaptured()

	return true
}

// Len returns the number of events captured so far.
func (rec *Recording) Len() int {
	return len(rec.events)
}

// Dropped returns the number of ticks dropped due to timing anomalies.
func (rec *Recording) Dropped() int {
	return rec.dropped
}

// Full checks whether the recording has reached the event cap.
func (rec *Recording) Full() bool {
	return len(rec.events) >= rec.policy.MaxEvents
}

// Sequence commits the captured events to a new Sequence for the given
// slot. The recording should be discarded afterwards.
func (rec *Recording) Sequence(slot int, name string) *sequence.Sequence {
	return sequence.New(slot, name, rec.events)
}

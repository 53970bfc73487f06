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

// Package sequence defines the recorded event sequence and the slot store
// that holds one sequence per slot.
//
// A Sequence is read-only once it has been committed to the store. The
// playback scheduler consumes sequences but never mutates them, which is
// what allows the store to hand the same *Sequence to a reader while a
// writer replaces the slot.
package sequence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/padcorder/padcorder/pad"
)

// Event is a timestamped snapshot of the full gamepad state. Events are
// emitted on state change only, never per tick, so consecutive events in a
// sequence always differ in at least one field.
type Event struct {
	// elapsed time since the recording started. strictly ascending within
	// a sequence
	Offset time.Duration

	// the complete state at Offset. a snapshot, not a diff: replaying from
	// any event requires no history
	State pad.State
}

func (ev Event) String() string {
	return fmt.Sprintf("%+.1fms %s", float64(ev.Offset.Microseconds())/1000.0, ev.State)
}

// Sequence is an ordered list of events recorded into one slot.
type Sequence struct {
	// uuid assigned at creation. used by the transcript package to track
	// sequences across save/load cycles
	ID string

	// the slot the sequence was recorded into. 1 to NumSlots
	Slot int

	// optional operator-assigned name
	Name string

	CreatedAt time.Time

	Events []Event

	// offset of the final event. looping playback waits for the full
	// duration before restarting, preserving trailing idle time
	Duration time.Duration
}

// New creates a Sequence from a list of captured events. Duration is taken
// from the final event. The event list is assumed to be ordered; the store
// verifies ordering on Put().
func New(slot int, name string, events []Event) *Sequence {
	seq := &Sequence{
		ID:        uuid.NewString(),
		Slot:      slot,
		Name:      name,
		CreatedAt: time.Now(),
		Events:    events,
	}
	if len(events) > 0 {
		seq.Duration = events[len(events)-1].Offset
	}
	return seq
}

// Empty checks whether the sequence contains no events.
func (seq *Sequence) Empty() bool {
	return seq == nil || len(seq.Events) == 0
}

func (seq *Sequence) String() string {
	name := seq.Name
	if name == "" {
		name = fmt.Sprintf("slot %d", seq.Slot)
	}
	return fmt.Sprintf("%s: %d events over %v", name, len(seq.Events), seq.Duration)
}

// ordered checks the strictly-ascending offset invariant. Offsets measure
// elapsed time since the recording started, so a negative first offset is
// as malformed as a descending pair.
func (seq *Sequence) ordered() bool {
	if len(seq.Events) > 0 && seq.Events[0].Offset < 0 {
		return false
	}
	for i := 1; i < len(seq.Events); i++ {
		if seq.Events[i].Offset <= seq.Events[i-1].Offset {
			return false
		}
	}
	return true
}

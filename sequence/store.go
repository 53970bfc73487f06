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

package sequence

import (
	"sync"

	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/metrics"
)

// NumSlots is the number of independent storage slots. Slots are numbered
// 1 to NumSlots.
const NumSlots = 30

// Error patterns raised by the Store.
const (
	// InvalidSlot is raised when a slot index is outside 1 to NumSlots.
	// Out-of-range indices are a caller error and are never clamped
	InvalidSlot = "store: invalid slot %d (valid slots are 1 to %d)"

	// UnorderedEvents is raised when a sequence's events are not strictly
	// ascending by offset
	UnorderedEvents = "store: slot %d: events are not strictly ordered by offset"
)

// Store holds one sequence per slot. Replacing a slot's content is atomic:
// a concurrent reader sees either the complete old sequence or the
// complete new one, never a mixture. This works because sequences are
// immutable once stored and replacement is a pointer swap under the lock.
//
// Each slot is independent; there is no ordering guarantee across slots.
// A writer to one slot does not block a reader of another beyond the
// duration of the pointer swap.
type Store struct {
	crit  sync.RWMutex
	slots [NumSlots]*Sequence
}

// NewStore is the preferred method of initialisation for the Store type.
func NewStore() *Store {
	return &Store{}
}

func validSlot(slot int) error {
	if slot < 1 || slot > NumSlots {
		return fault.Errorf(InvalidSlot, slot, NumSlots)
	}
	return nil
}

// Put replaces the slot's content with the sequence. A nil or empty
// sequence clears the slot. The sequence must not be mutated by the caller
// after Put returns.
func (s *Store) Put(slot int, seq *Sequence) error {
	if err := validSlot(slot); err != nil {
		return err
	}

	if seq.Empty() {
		return s.Clear(slot)
	}

	if !seq.ordered() {
		return fault.Errorf(UnorderedEvents, slot)
	}

	seq.Slot = slot

	s.crit.Lock()
	s.slots[slot-1] = seq
	s.crit.Unlock()

	metrics.UpdateSlotsOccupied(s.Occupied())

	return nil
}

// Get returns the slot's sequence, or nil if the slot is empty. The
// returned sequence must be treated as read-only.
func (s *Store) Get(slot int) (*Sequence, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}

	s.crit.RLock()
	defer s.crit.RUnlock()
	return s.slots[slot-1], nil
}

// Clear empties the slot.
func (s *Store) Clear(slot int) error {
	if err := validSlot(slot); err != nil {
		return err
	}

	s.crit.Lock()
	s.slots[slot-1] = nil
	s.crit.Unlock()

	metrics.UpdateSlotsOccupied(s.Occupied())

	return nil
}

// Rename assigns a name to the slot's sequence. An empty slot cannot be
// renamed; the call is a no-op in that case.
func (s *Store) Rename(slot int, name string) error {
	if err := validSlot(slot); err != nil {
		return err
	}

	s.crit.Lock()
	defer s.crit.Unlock()

	if seq := s.slots[slot-1]; seq != nil {
		// copy-on-write so that a concurrent reader of the old sequence
		// never sees the name change
		renamed := *seq
		renamed.Name = name
		s.slots[slot-1] = &renamed
	}

	return nil
}

// Occupied returns the number of slots currently holding a sequence.
func (s *Store) Occupied() int {
	s.crit.RLock()
	defer s.crit.RUnlock()

	ct := 0
	for _, seq := range s.slots {
		if seq != nil {
			ct++
		}
	}
	return ct
}

// ExportAll returns a mapping of every occupied slot to its sequence. The
// mapping is a snapshot; later store mutations do not affect it. Sequences
// in the mapping must be treated as read-only.
func (s *Store) ExportAll() map[int]*Sequence {
	s.crit.RLock()
	defer s.crit.RUnlock()

	m := make(map[int]*Sequence)
	for i, seq := range s.slots {
		if seq != nil {
			m[i+1] = seq
		}
	}
	return m
}

// ImportAll replaces the content of every slot named in the mapping.
// Slots not named in the mapping are left untouched. The entire mapping is
// validated before any slot is touched, so a failed import leaves the
// store unchanged.
func (s *Store) ImportAll(m map[int]*Sequence) error {
	for slot, seq := range m {
		if err := validSlot(slot); err != nil {
			return err
		}
		if !seq.Empty() && !seq.ordered() {
			return fault.Errorf(UnorderedEvents, slot)
		}
	}

	s.crit.Lock()
	for slot, seq := range m {
		if seq.Empty() {
			s.slots[slot-1] = nil
		} else {
			seq.Slot = slot
			s.slots[slot-1] = seq
		}
	}
	s.crit.Unlock()

	metrics.UpdateSlotsOccupied(s.Occupied())

	return nil
}

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

// Package driver defines the two hardware facing collaborators of the
// engine: the input source that is polled for raw gamepad state, and the
// output sink that accepts synthesized state.
//
// Implementations live in the sub-packages. The engine itself only ever
// sees these interfaces, which is what makes it testable without hardware.
package driver

import (
	"time"

	"github.com/padcorder/padcorder/pad"
)

// Sample is one polling tick's worth of raw controller state. Axis values
// are raw floats as reported by the device; quantization happens in the
// capture package.
type Sample struct {
	// monotonic clock reading taken at the moment of the poll
	Time time.Time

	Buttons pad.Buttons

	// stick axes in the range [-1.0, 1.0], X then Y
	LeftStick  [2]float64
	RightStick [2]float64

	// trigger axes in the range [0.0, 1.0], left then right
	Triggers [2]float64
}

// Input is the physical gamepad being polled. Poll() is expected to be
// called at a fixed rate of up to 1000Hz and must not block.
type Input interface {
	Poll() (Sample, error)
	Close() error
}

// Output is the virtual controller that synthesized state is written to.
// SetState applies a full state snapshot as a single atomic write.
// Neutralize releases every button and centres every axis.
//
// Writes are expected to be non-blocking or bounded-latency; the playback
// scheduler calls SetState from its dispatch loop.
type Output interface {
	SetState(state pad.State) error
	Neutralize() error
	Close() error
}

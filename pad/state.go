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

// Package pad describes the state of a gamepad at a single moment in time.
// It is the common currency between the input source, the capture and
// playback packages, and the output sink.
//
// A State is a full snapshot, not a diff. The axis fields of a State are
// expected to hold quantized values (see the quantize package) which means
// two States can be compared with the == operator.
package pad

import (
	"fmt"
	"strings"

	"github.com/padcorder/padcorder/fault"
)

// sentinal errors for the pad package
const (
	UnknownButton = "pad: unrecognised button name: %s"
)

// Buttons is the set of digital buttons currently held, as a bitmask.
type Buttons uint32

// List of defined buttons. The layout follows the common dual-stick pad:
// four face buttons, two shoulder buttons, back/start, the two stick
// clicks, and the dpad.
const (
	ButtonA Buttons = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonBack
	ButtonStart
	ButtonLeftThumb
	ButtonRightThumb
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
)

var buttonNames = []struct {
	b    Buttons
	name string
}{
	{ButtonA, "a"},
	{ButtonB, "b"},
	{ButtonX, "x"},
	{ButtonY, "y"},
	{ButtonLeftShoulder, "left_shoulder"},
	{ButtonRightShoulder, "right_shoulder"},
	{ButtonBack, "back"},
	{ButtonStart, "start"},
	{ButtonLeftThumb, "left_thumb"},
	{ButtonRightThumb, "right_thumb"},
	{ButtonDPadUp, "dpad_up"},
	{ButtonDPadDown, "dpad_down"},
	{ButtonDPadLeft, "dpad_left"},
	{ButtonDPadRight, "dpad_right"},
}

// Holds checks whether all buttons in the mask m are held.
func (b Buttons) Holds(m Buttons) bool {
	return b&m == m
}

func (b Buttons) String() string {
	if b == 0 {
		return "none"
	}
	return strings.Join(b.Names(), "+")
}

// Names returns the names of the held buttons, in declaration order. Nil
// when no button is held.
func (b Buttons) Names() []string {
	if b == 0 {
		return nil
	}
	s := []string{}
	for _, n := range buttonNames {
		if b.Holds(n.b) {
			s = append(s, n.name)
		}
	}
	return s
}

// ParseButton returns the Buttons value for a button name, as used in
// configuration files. Error is returned for unrecognised names.
func ParseButton(name string) (Buttons, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range buttonNames {
		if n.name == name {
			return n.b, nil
		}
	}
	return 0, fault.Errorf(UnknownButton, name)
}

// Stick is the quantized position of a thumbstick. Values are in the range
// [-1.0, 1.0] with negative Y meaning up, matching the raw convention of
// the input source.
type Stick struct {
	X float64
	Y float64
}

// Triggers is the quantized position of the two analog triggers. Values
// are in the range [0.0, 1.0].
type Triggers struct {
	Left  float64
	Right float64
}

// State is the full state of a gamepad at a single moment. The zero value
// is the neutral state.
type State struct {
	Buttons    Buttons
	LeftStick  Stick
	RightStick Stick
	Triggers   Triggers
}

// Neutral returns the all-released, axes-centred state.
func Neutral() State {
	return State{}
}

// IsNeutral checks whether the state has no buttons held and all axes
// centred.
func (s State) IsNeutral() bool {
	return s == State{}
}

func (s State) String() string {
	return fmt.Sprintf("buttons=%s left=(%.2f,%.2f) right=(%.2f,%.2f) triggers=(%.2f,%.2f)",
		s.Buttons, s.LeftStick.X, s.LeftStick.Y,
		s.RightStick.X, s.RightStick.Y,
		s.Triggers.Left, s.Triggers.Right)
}

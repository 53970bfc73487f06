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

//go:build linux

// Package xpad synthesizes a virtual gamepad through the uinput kernel
// interface. The virtual pad appears to the system as an ordinary game
// controller; whatever application is in the foreground receives the
// replayed input exactly as if a human were pressing the real thing.
//
// The uinput gamepad has no analog triggers, so a trigger value past half
// travel is pressed as the corresponding digital trigger button. The left
// stick Y axis is inverted on the way out, matching the convention
// difference between the capture side and the evdev axis direction.
package xpad

import (
	"github.com/bendahl/uinput"

	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/pad"
)

// sentinal errors for the xpad package
const (
	CreateFailure = "xpad: %v"
	WriteFailure  = "xpad: write: %v"
)

// trigger travel beyond which the digital trigger button is pressed
const triggerThreshold = 0.5

var buttonMap = []struct {
	pad pad.Buttons
	key int
}{
	{pad.ButtonA, uinput.ButtonSouth},
	{pad.ButtonB, uinput.ButtonEast},
	{pad.ButtonX, uinput.ButtonWest},
	{pad.ButtonY, uinput.ButtonNorth},
	{pad.ButtonLeftShoulder, uinput.ButtonBumperLeft},
	{pad.ButtonRightShoulder, uinput.ButtonBumperRight},
	{pad.ButtonBack, uinput.ButtonSelect},
	{pad.ButtonStart, uinput.ButtonStart},
	{pad.ButtonLeftThumb, uinput.ButtonThumbLeft},
	{pad.ButtonRightThumb, uinput.ButtonThumbRight},
}

var hatMap = []struct {
	pad pad.Buttons
	dir uinput.HatDirection
}{
	{pad.ButtonDPadUp, uinput.HatUp},
	{pad.ButtonDPadDown, uinput.HatDown},
	{pad.ButtonDPadLeft, uinput.HatLeft},
	{pad.ButtonDPadRight, uinput.HatRight},
}

// Pad is a synthesized virtual gamepad. Implements the driver.Output
// interface.
type Pad struct {
	vg uinput.Gamepad

	// digital state currently held on the device. writes are diffed
	// against this so that an unchanged button never generates a kernel
	// event
	held     pad.Buttons
	triggers [2]bool
}

// Create a virtual gamepad device. The device node persists until Close.
func Create(name string) (*Pad, error) {
	vg, err := uinput.CreateGamepad("/dev/uinput", []byte(name), 0x045e, 0x028e)
	if err != nil {
		return nil, fault.Errorf(CreateFailure, err)
	}

	logger.Logf(logger.Allow, "xpad", "virtual gamepad: %s", name)

	return &Pad{vg: vg}, nil
}

// SetState applies the full gamepad state to the virtual device.
func (p *Pad) SetState(state pad.State) error {
	for _, m := range buttonMap {
		want := state.Buttons.Holds(m.pad)
		if want == p.held.Holds(m.pad) {
			continue
		}
		var err error
		if want {
			err = p.vg.ButtonDown(m.key)
		} else {
			err = p.vg.ButtonUp(m.key)
		}
		if err != nil {
			return fault.Errorf(WriteFailure, err)
		}
	}

	for _, m := range hatMap {
		want := state.Buttons.Holds(m.pad)
		if want == p.held.Holds(m.pad) {
			continue
		}
		var err error
		if want {
			err = p.vg.HatPress(m.dir)
		} else {
			err = p.vg.HatRelease(m.dir)
		}
		if err != nil {
			return fault.Errorf(WriteFailure, err)
		}
	}
	p.held = state.Buttons

	// evdev Y grows downward
	if err := p.vg.LeftStickMove(float32(state.LeftStick.X), float32(-state.LeftStick.Y)); err != nil {
		return fault.Errorf(WriteFailure, err)
	}
	if err := p.vg.RightStickMove(float32(state.RightStick.X), float32(state.RightStick.Y)); err != nil {
		return fault.Errorf(WriteFailure, err)
	}

	if err := p.trigger(0, uinput.ButtonTriggerLeft, state.Triggers.Left); err != nil {
		return err
	}
	if err := p.trigger(1, uinput.ButtonTriggerRight, state.Triggers.Right); err != nil {
		return err
	}

	return nil
}

func (p *Pad) trigger(idx int, key int, value float64) error {
	want := value > triggerThreshold
	if want == p.triggers[idx] {
		return nil
	}
	var err error
	if want {
		err = p.vg.ButtonDown(key)
	} else {
		err = p.vg.ButtonUp(key)
	}
	if err != nil {
		return fault.Errorf(WriteFailure, err)
	}
	p.triggers[idx] = want
	return nil
}

// Neutralize releases every button and centres both sticks.
func (p *Pad) Neutralize() error {
	return p.SetState(pad.Neutral())
}

// Close the virtual device.
func (p *Pad) Close() error {
	if err := p.vg.Close(); err != nil {
		return fault.Errorf(CreateFailure, err)
	}
	return nil
}

// assert the driver interface is satisfied
var _ driver.Output = (*Pad)(nil)

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

// Package sdlpad reads a physical game controller through SDL. The pad is
// polled directly rather than through the SDL event queue, so the polling
// rate is under the caller's control and every sample carries a clock
// reading taken at the moment of the poll.
package sdlpad

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/pad"
)

// sentinal errors for the sdlpad package
const (
	InitFailure  = "sdlpad: %v"
	NoController = "sdlpad: no game controller at index %d"
)

var buttonMap = []struct {
	sdl sdl.GameControllerButton
	pad pad.Buttons
}{
	{sdl.CONTROLLER_BUTTON_A, pad.ButtonA},
	{sdl.CONTROLLER_BUTTON_B, pad.ButtonB},
	{sdl.CONTROLLER_BUTTON_X, pad.ButtonX},
	{sdl.CONTROLLER_BUTTON_Y, pad.ButtonY},
	{sdl.CONTROLLER_BUTTON_LEFTSHOULDER, pad.ButtonLeftShoulder},
	{sdl.CONTROLLER_BUTTON_RIGHTSHOULDER, pad.ButtonRightShoulder},
	{sdl.CONTROLLER_BUTTON_BACK, pad.ButtonBack},
	{sdl.CONTROLLER_BUTTON_START, pad.ButtonStart},
	{sdl.CONTROLLER_BUTTON_LEFTSTICK, pad.ButtonLeftThumb},
	{sdl.CONTROLLER_BUTTON_RIGHTSTICK, pad.ButtonRightThumb},
	{sdl.CONTROLLER_BUTTON_DPAD_UP, pad.ButtonDPadUp},
	{sdl.CONTROLLER_BUTTON_DPAD_DOWN, pad.ButtonDPadDown},
	{sdl.CONTROLLER_BUTTON_DPAD_LEFT, pad.ButtonDPadLeft},
	{sdl.CONTROLLER_BUTTON_DPAD_RIGHT, pad.ButtonDPadRight},
}

// Pad is a physical game controller opened through SDL. Implements the
// driver.Input interface.
type Pad struct {
	ctrl *sdl.GameController
}

// Open the game controller at the given joystick index.
func Open(index int) (*Pad, error) {
	if err := sdl.InitSubSystem(sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fault.Errorf(InitFailure, err)
	}

	if index < 0 || index >= sdl.NumJoysticks() {
		sdl.QuitSubSystem(sdl.INIT_GAMECONTROLLER)
		return nil, fault.Errorf(NoController, index)
	}

	ctrl := sdl.GameControllerOpen(index)
	if ctrl == nil || !ctrl.Attached() {
		sdl.QuitSubSystem(sdl.INIT_GAMECONTROLLER)
		return nil, fault.Errorf(NoController, index)
	}

	logger.Logf(logger.Allow, "sdlpad", "gamepad: %s", ctrl.Name())

	return &Pad{ctrl: ctrl}, nil
}

// Poll reads the current controller state. The sample's clock reading is
// taken after the device state has been refreshed.
func (p *Pad) Poll() (driver.Sample, error) {
	sdl.GameControllerUpdate()

	if !p.ctrl.Attached() {
		return driver.Sample{}, fault.Errorf(NoController, 0)
	}

	var smp driver.Sample

	for _, m := range buttonMap {
		if p.ctrl.Button(m.sdl) == sdl.PRESSED {
			smp.Buttons |= m.pad
		}
	}

	smp.LeftStick[0] = axisFloat(p.ctrl.Axis(sdl.CONTROLLER_AXIS_LEFTX))
	smp.LeftStick[1] = axisFloat(p.ctrl.Axis(sdl.CONTROLLER_AXIS_LEFTY))
	smp.RightStick[0] = axisFloat(p.ctrl.Axis(sdl.CONTROLLER_AXIS_RIGHTX))
	smp.RightStick[1] = axisFloat(p.ctrl.Axis(sdl.CONTROLLER_AXIS_RIGHTY))
	smp.Triggers[0] = axisFloat(p.ctrl.Axis(sdl.CONTROLLER_AXIS_TRIGGERLEFT))
	smp.Triggers[1] = axisFloat(p.ctrl.Axis(sdl.CONTROLLER_AXIS_TRIGGERRIGHT))

	smp.Time = time.Now()

	return smp, nil
}

// Close the controller and release the SDL subsystem.
func (p *Pad) Close() error {
	p.ctrl.Close()
	sdl.QuitSubSystem(sdl.INIT_GAMECONTROLLER)
	return nil
}

// axisFloat maps SDL's int16 axis range onto [-1.0, 1.0].
func axisFloat(v int16) float64 {
	f := float64(v) / 32767.0
	if f < -1.0 {
		f = -1.0
	}
	return f
}

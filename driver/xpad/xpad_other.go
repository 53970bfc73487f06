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

//go:build !linux

// Package xpad synthesizes a virtual gamepad through the uinput kernel
// interface. uinput is Linux only; on other platforms Create always
// fails.
package xpad

import (
	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/pad"
)

// sentinal errors for the xpad package
const (
	NotSupported = "xpad: virtual gamepad requires linux"
)

// Pad is a synthesized virtual gamepad. Unavailable on this platform.
type Pad struct{}

// Create always fails on this platform.
func Create(name string) (*Pad, error) {
	return nil, fault.Errorf(NotSupported)
}

func (p *Pad) SetState(pad.State) error {
	return fault.Errorf(NotSupported)
}

func (p *Pad) Neutralize() error {
	return fault.Errorf(NotSupported)
}

func (p *Pad) Close() error {
	return nil
}

var _ driver.Output = (*Pad)(nil)

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

// Package quantize maps raw analog axis samples to a small discrete value
// set. Raw stick readings drift and tremble; left unquantized they defeat
// state-change encoding (every tick looks different) and make
// deterministic replay impossible. Snapping each sample to the nearest
// member of a fixed level set removes the noise.
//
// Quantization is a pure function of the sample and the configuration.
// Identical raw input always yields identical output; there is no
// hysteresis.
package quantize

import "math"

// Ternary is the minimal level set: hard left, centre, hard right. This is
// the set used for sticks that are effectively digital inputs.
var Ternary = []float64{-1.0, 0.0, 1.0}

// Five adds half-deflection levels for games that distinguish walk from
// run.
var Five = []float64{-1.0, -0.5, 0.0, 0.5, 1.0}

// Steps returns a level set of n evenly spaced levels across [-1.0, 1.0].
// n is forced odd and to a minimum of 3 so that the set always contains
// the zero level.
func Steps(n int) []float64 {
	if n < 3 {
		n = 3
	}
	if n%2 == 0 {
		n++
	}

	levels := make([]float64, n)
	half := n / 2
	for i := range levels {
		levels[i] = float64(i-half) / float64(half)
	}
	return levels
}

// Axis maps a raw axis sample to the nearest member of the level set.
//
// Raw values are clamped to [-1.0, 1.0]; a magnitude below the deadzone
// maps to the zero level. Beyond the deadzone the remaining range is
// rescaled to [0.0, 1.0] before snapping, so that the deadzone edge is the
// origin of travel rather than a dead region in the middle of it. Ties
// between two equidistant levels break toward zero.
//
// A nil or empty level set means Ternary. Deadzone values outside [0.0,
// 1.0) are clamped to that range.
func Axis(raw float64, deadzone float64, levels []float64) float64 {
	if len(levels) == 0 {
		levels = Ternary
	}

	if raw > 1.0 {
		raw = 1.0
	} else if raw < -1.0 {
		raw = -1.0
	}

	if deadzone < 0.0 {
		deadzone = 0.0
	} else if deadzone >= 1.0 {
		deadzone = math.Nextafter(1.0, 0.0)
	}

	mag := math.Abs(raw)
	if mag < deadzone {
		return 0.0
	}

	// rescale the live range to [0.0, 1.0]
	scaled := (mag - deadzone) / (1.0 - deadzone)
	v := math.Copysign(scaled, raw)

	best := levels[0]
	for _, l := range levels[1:] {
		d := math.Abs(v - l)
		bd := math.Abs(v - best)
		if d < bd || (d == bd && math.Abs(l) < math.Abs(best)) {
			best = l
		}
	}

	// avoid returning the negative zero that Copysign can produce
	if best == 0.0 {
		return 0.0
	}
	return best
}

// Trigger maps a raw trigger sample in [0.0, 1.0] to the nearest member of
// the level set, treating it as the positive half of an axis.
func Trigger(raw float64, deadzone float64, levels []float64) float64 {
	if raw < 0.0 {
		raw = 0.0
	}
	return Axis(raw, deadzone, levels)
}

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

package quantize_test

import (
	"testing"

	"github.com/padcorder/padcorder/quantize"
	"github.com/padcorder/padcorder/test"
)

func TestDeadzone(t *testing.T) {
	// anything below the deadzone maps to the zero level
	test.ExpectEquality(t, quantize.Axis(0.0, 0.1, quantize.Ternary), 0.0)
	test.ExpectEquality(t, quantize.Axis(0.05, 0.1, quantize.Ternary), 0.0)
	test.ExpectEquality(t, quantize.Axis(-0.0999, 0.1, quantize.Ternary), 0.0)

	// drift just beyond the deadzone rescales to a value near zero and
	// still snaps to the zero level
	test.ExpectEquality(t, quantize.Axis(0.11, 0.1, quantize.Ternary), 0.0)
	test.ExpectEquality(t, quantize.Axis(-0.11, 0.1, quantize.Ternary), 0.0)
}

func TestFullDeflection(t *testing.T) {
	test.ExpectEquality(t, quantize.Axis(1.0, 0.1, quantize.Ternary), 1.0)
	test.ExpectEquality(t, quantize.Axis(-1.0, 0.1, quantize.Ternary), -1.0)
	test.ExpectEquality(t, quantize.Axis(0.9, 0.1, quantize.Ternary), 1.0)
	test.ExpectEquality(t, quantize.Axis(-0.9, 0.1, quantize.Ternary), -1.0)
}

func TestClamping(t *testing.T) {
	// out-of-range raw samples are clamped, not rejected
	test.ExpectEquality(t, quantize.Axis(2.5, 0.1, quantize.Ternary), 1.0)
	test.ExpectEquality(t, quantize.Axis(-7.0, 0.1, quantize.Ternary), -1.0)
}

func TestTieTowardZero(t *testing.T) {
	// with no deadzone a raw value of exactly 0.5 is equidistant between
	// the 0.0 and 1.0 levels. the tie must break toward zero
	test.ExpectEquality(t, quantize.Axis(0.5, 0.0, quantize.Ternary), 0.0)
	test.ExpectEquality(t, quantize.Axis(-0.5, 0.0, quantize.Ternary), 0.0)

	// with the Five set 0.25 is equidistant between 0.0 and 0.5
	test.ExpectEquality(t, quantize.Axis(0.25, 0.0, quantize.Five), 0.0)
	test.ExpectEquality(t, quantize.Axis(-0.25, 0.0, quantize.Five), 0.0)
}

// quantization is idempotent: every level of the configured set, fed back
// through the quantizer, yields itself
func TestIdempotence(t *testing.T) {
	for _, levels := range [][]float64{quantize.Ternary, quantize.Five, quantize.Steps(9)} {
		for _, q := range levels {
			test.ExpectEquality(t, quantize.Axis(q, 0.0, levels), q)
		}
	}
}

// identical raw input always yields identical output, independent of
// history
func TestDeterminism(t *testing.T) {
	a := quantize.Axis(0.73, 0.1, quantize.Five)
	for i := 0; i < 100; i++ {
		// interleave unrelated samples to show there is no hysteresis
		quantize.Axis(-0.4, 0.1, quantize.Five)
		test.ExpectEquality(t, quantize.Axis(0.73, 0.1, quantize.Five), a)
	}
}

func TestSteps(t *testing.T) {
	test.ExpectEquality(t, len(quantize.Steps(3)), 3)
	test.ExpectEquality(t, len(quantize.Steps(5)), 5)

	// even and undersized counts are corrected
	test.ExpectEquality(t, len(quantize.Steps(4)), 5)
	test.ExpectEquality(t, len(quantize.Steps(0)), 3)

	five := quantize.Steps(5)
	test.ExpectEquality(t, five[0], -1.0)
	test.ExpectEquality(t, five[2], 0.0)
	test.ExpectEquality(t, five[4], 1.0)
}

func TestTrigger(t *testing.T) {
	test.ExpectEquality(t, quantize.Trigger(0.0, 0.05, quantize.Ternary), 0.0)
	test.ExpectEquality(t, quantize.Trigger(0.9, 0.05, quantize.Ternary), 1.0)

	// negative trigger samples are treated as released
	test.ExpectEquality(t, quantize.Trigger(-0.4, 0.05, quantize.Ternary), 0.0)
}

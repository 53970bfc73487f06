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

package fault_test

import (
	"errors"
	"testing"

	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/test"
)

const (
	patternA = "alpha: %v"
	patternB = "bravo: slot %d"
)

func TestIs(t *testing.T) {
	err := fault.Errorf(patternB, 31)
	test.ExpectEquality(t, err.Error(), "bravo: slot 31")

	test.ExpectSuccess(t, fault.Is(err, patternB))
	test.ExpectFailure(t, fault.Is(err, patternA))
	test.ExpectFailure(t, fault.Is(nil, patternB))

	// errors created outside of the fault package are never a match
	plain := errors.New("bravo: slot 31")
	test.ExpectFailure(t, fault.Is(plain, patternB))
	test.ExpectFailure(t, fault.IsAny(plain))
}

func TestHas(t *testing.T) {
	inner := fault.Errorf(patternB, 0)
	outer := fault.Errorf(patternA, inner)

	test.ExpectSuccess(t, fault.Has(outer, patternB))
	test.ExpectSuccess(t, fault.Has(outer, patternA))
	test.ExpectFailure(t, fault.Is(outer, patternB))
}

func TestDeduplication(t *testing.T) {
	// adjacent duplicate message parts are removed when the error message
	// is formatted
	inner := fault.Errorf("playback: %v", errors.New("device gone"))
	outer := fault.Errorf("playback: %v", inner)
	test.ExpectEquality(t, outer.Error(), "playback: device gone")
}

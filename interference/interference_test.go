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

package interference_test

import (
	"testing"
	"time"

	"github.com/padcorder/padcorder/interference"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/test"
)

func TestExtraPressFiresAfterDebounce(t *testing.T) {
	mon := interference.NewMonitor(interference.Policy{Debounce: 40 * time.Millisecond})
	mon.Arm()

	now := time.Now()
	live := pad.State{Buttons: pad.ButtonA}
	applied := pad.Neutral()

	// deviation starts the streak but does not fire immediately
	test.ExpectEquality(t, mon.Check(live, applied, now), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(20*time.Millisecond)), false)

	// fires once the streak reaches the debounce window
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(45*time.Millisecond)), true)

	// and never again until rearmed
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(100*time.Millisecond)), false)

	mon.Arm()
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(200*time.Millisecond)), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(250*time.Millisecond)), true)
}

func TestPlaybackPressesAreNotInterference(t *testing.T) {
	mon := interference.NewMonitor(interference.Policy{Debounce: time.Millisecond})
	mon.Arm()

	now := time.Now()

	// playback holding a button the player does not hold is not a
	// deviation in either sample
	applied := pad.State{Buttons: pad.ButtonA | pad.ButtonB}
	live := pad.State{Buttons: pad.ButtonA}
	test.ExpectEquality(t, mon.Check(live, applied, now), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(10*time.Millisecond)), false)

	// the player matching playback exactly is also fine
	test.ExpectEquality(t, mon.Check(applied, applied, now.Add(20*time.Millisecond)), false)
}

func TestStreakResetsWhenDeviationStops(t *testing.T) {
	mon := interference.NewMonitor(interference.Policy{Debounce: 40 * time.Millisecond})
	mon.Arm()

	now := time.Now()
	live := pad.State{Buttons: pad.ButtonA}
	applied := pad.Neutral()

	test.ExpectEquality(t, mon.Check(live, applied, now), false)

	// a momentary blip shorter than the window, then back to clean
	test.ExpectEquality(t, mon.Check(applied, applied, now.Add(20*time.Millisecond)), false)

	// a fresh deviation starts a fresh streak: 30ms in is not enough
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(30*time.Millisecond)), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(60*time.Millisecond)), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(75*time.Millisecond)), true)
}

func TestAxisThreshold(t *testing.T) {
	mon := interference.NewMonitor(interference.Policy{
		Debounce:      time.Millisecond,
		AxisThreshold: 0.5,
	})
	mon.Arm()

	now := time.Now()
	applied := pad.State{LeftStick: pad.Stick{X: 1.0}}

	// sub-threshold disagreement is tolerated
	live := pad.State{LeftStick: pad.Stick{X: 0.75}}
	test.ExpectEquality(t, mon.Check(live, applied, now), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(10*time.Millisecond)), false)

	// pulling the stick the other way is not
	live = pad.State{LeftStick: pad.Stick{X: -1.0}}
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(20*time.Millisecond)), false)
	test.ExpectEquality(t, mon.Check(live, applied, now.Add(30*time.Millisecond)), true)
}

func TestIgnoredButtons(t *testing.T) {
	mon := interference.NewMonitor(interference.Policy{
		Debounce:      time.Millisecond,
		IgnoreButtons: pad.ButtonStart | pad.ButtonBack,
	})
	mon.Arm()

	now := time.Now()
	live := pad.State{Buttons: pad.ButtonStart}

	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now), false)
	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now.Add(10*time.Millisecond)), false)

	// a non-ignored button alongside still counts
	live.Buttons |= pad.ButtonA
	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now.Add(20*time.Millisecond)), false)
	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now.Add(30*time.Millisecond)), true)
}

func TestDisarmedMonitorNeverFires(t *testing.T) {
	mon := interference.NewMonitor(interference.Policy{Debounce: time.Millisecond})

	now := time.Now()
	live := pad.State{Buttons: pad.ButtonA}
	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now), false)
	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now.Add(time.Hour)), false)

	mon.Arm()
	mon.Disarm()
	test.ExpectEquality(t, mon.Check(live, pad.Neutral(), now.Add(2*time.Hour)), false)
}

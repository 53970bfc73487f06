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

// Package playback replays a recorded sequence through an output driver,
// reproducing each event at its original offset from the start of the
// pass.
//
// Timing is anchored: every event targets base+offset where base is fixed
// at the start of the pass. A late event is applied immediately but never
// shifts the targets of the events after it, so lateness does not
// accumulate. When looping, base advances by the sequence duration each
// pass, which preserves the period of the sequence exactly, including any
// idle time between the last event and the first event of the next pass.
//
// The scheduler runs in its own goroutine. Stop is synchronous: when it
// returns, the goroutine has exited and the output has been neutralized.
package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/metrics"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/sequence"
)

// trailingHold is how long the final state is held after the last event of
// the final pass, before the output is neutralized. Without it a sequence
// ending on a press would release the instant it was pressed.
const trailingHold = 200 * time.Millisecond

// sentinal errors for the playback package
const (
	AlreadyPlaying = "playback: already playing"
	EmptySequence  = "playback: sequence is empty"
	SinkFailure    = "playback: output rejected state: %v"
)

// Loop controls pass repetition.
type Loop struct {
	Enabled bool

	// number of passes when looping. zero or less means loop until
	// stopped
	Count int
}

// Scheduler replays sequences through an output driver. A scheduler can be
// reused for any number of consecutive playbacks but runs at most one at a
// time.
type Scheduler struct {
	out driver.Output

	crit    sync.Mutex
	running bool
	quit    chan bool
	fin     chan bool

	// the state most recently applied to the output, as an
	// atomic.Value of pad.State. read from the polling task for
	// interference comparison
	lastApplied atomic.Value
}

// NewScheduler creates a scheduler replaying through the given output.
func NewScheduler(out driver.Output) *Scheduler {
	sch := &Scheduler{out: out}
	sch.lastApplied.Store(pad.Neutral())
	return sch
}

// Start begins replaying the sequence in a new goroutine. The onDone
// callback runs, in the scheduler goroutine, when playback ends on its own
// or fails; it does not run when Stop ends the playback. A nil error means
// natural completion.
func (sch *Scheduler) Start(seq *sequence.Sequence, loop Loop, onDone func(error)) error {
	sch.crit.Lock()
	defer sch.crit.Unlock()

	if sch.running {
		return fault.Errorf(AlreadyPlaying)
	}
	if seq == nil || seq.Empty() {
		return fault.Errorf(EmptySequence)
	}

	sch.running = true
	sch.quit = make(chan bool)
	sch.fin = make(chan bool)
	sch.lastApplied.Store(pad.Neutral())

	go sch.run(seq, loop, sch.quit, sch.fin, onDone)

	return nil
}

// Stop ends the current playback and neutralizes the output. Synchronous:
// the scheduler goroutine has exited by the time Stop returns. No-op when
// nothing is playing.
func (sch *Scheduler) Stop() {
	sch.crit.Lock()
	if !sch.running {
		sch.crit.Unlock()
		return
	}
	sch.running = false
	close(sch.quit)
	fin := sch.fin
	sch.crit.Unlock()

	<-fin

	sch.neutralize()
}

// Running checks whether a playback is in progress.
func (sch *Scheduler) Running() bool {
	sch.crit.Lock()
	defer sch.crit.Unlock()
	return sch.running
}

// LastApplied returns the state most recently applied to the output.
// Neutral when nothing is playing. Safe to call from any goroutine.
func (sch *Scheduler) LastApplied() pad.State {
	return sch.lastApplied.Load().(pad.State)
}

func (sch *Scheduler) neutralize() {
	if err := sch.out.Neutralize(); err != nil {
		// one retry. a failure here means buttons may be left pressed on
		// the output device, which is worth shouting about
		if err = sch.out.Neutralize(); err != nil {
			logger.Logf(logger.Allow, "playback", "neutralize: %v", err)
		}
	}
	sch.lastApplied.Store(pad.Neutral())
}

// run is the scheduler goroutine. running stays true until the goroutine
// has finished with the output entirely, trailing hold included, so that
// Stop() always waits on fin and a new Start() can never overlap with this
// playback.
func (sch *Scheduler) run(seq *sequence.Sequence, loop Loop, quit chan bool, fin chan bool, onDone func(error)) {
	var failure error
	var aborted bool

	base := time.Now()
	pass := 0

done:
	for {
		for _, ev := range seq.Events {
			target := base.Add(ev.Offset)

			if d := time.Until(target); d > 0 {
				tck := time.NewTimer(d)
				select {
				case <-quit:
					tck.Stop()
					aborted = true
					break done
				case <-tck.C:
				}
			} else {
				// late. apply immediately but leave later targets alone
				metrics.RecordPlaybackLateness(float64(-d) / float64(time.Millisecond))
				select {
				case <-quit:
					aborted = true
					break done
				default:
				}
			}

			if err := sch.out.SetState(ev.State); err != nil {
				failure = fault.Errorf(SinkFailure, err)
				break done
			}
			sch.lastApplied.Store(ev.State)
		}

		pass++
		metrics.RecordPlaybackPass()

		if !loop.Enabled {
			break done
		}
		if loop.Count > 0 && pass >= loop.Count {
			break done
		}

		base = base.Add(seq.Duration)
	}

	if aborted {
		// Stop owns the shutdown: it is waiting on fin and will
		// neutralize once we are gone
		close(fin)
		return
	}

	if failure == nil {
		// hold the final state briefly before releasing
		tck := time.NewTimer(trailingHold)
		select {
		case <-quit:
			tck.Stop()
			close(fin)
			return
		case <-tck.C:
		}
	} else {
		logger.Logf(logger.Allow, "playback", "%v", failure)
		metrics.RecordPlaybackAbort()
	}

	sch.neutralize()

	// the handoff. only after this point can Stop() return without
	// waiting and Start() accept a new playback
	sch.crit.Lock()
	stale := !sch.running
	sch.running = false
	sch.crit.Unlock()

	close(fin)

	if stale {
		// Stop raced the natural completion and owns the outcome
		return
	}

	if onDone != nil {
		onDone(failure)
	}
}

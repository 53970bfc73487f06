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

package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/interference"
	"github.com/padcorder/padcorder/notify"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/sequence"
	"github.com/padcorder/padcorder/session"
	"github.com/padcorder/padcorder/test"
)

// nullOutput accepts and discards all state writes.
type nullOutput struct {
	crit        sync.Mutex
	neutralized int
}

func (out *nullOutput) SetState(pad.State) error {
	return nil
}

func (out *nullOutput) Neutralize() error {
	out.crit.Lock()
	defer out.crit.Unlock()
	out.neutralized++
	return nil
}

func (out *nullOutput) Close() error {
	return nil
}

// notices collects every notice the session emits.
type notices struct {
	crit sync.Mutex
	seen []notify.Notice
}

func (n *notices) Notify(notice notify.Notice) error {
	n.crit.Lock()
	defer n.crit.Unlock()
	n.seen = append(n.seen, notice)
	return nil
}

func (n *notices) count(notice notify.Notice) int {
	n.crit.Lock()
	defer n.crit.Unlock()
	c := 0
	for _, s := range n.seen {
		if s == notice {
			c++
		}
	}
	return c
}

func newTestSession(t *testing.T) (*session.Session, *sequence.Store, *notices) {
	t.Helper()
	store := sequence.NewStore()
	n := &notices{}
	s := session.NewSession(store, &nullOutput{}, session.Options{
		Interference: interference.Policy{Debounce: 10 * time.Millisecond},
	}, n)
	return s, store, n
}

func tick(s *session.Session, at time.Time, buttons pad.Buttons) {
	s.Tick(driver.Sample{Time: at, Buttons: buttons})
}

func TestRecordCommitPlay(t *testing.T) {
	s, store, n := newTestSession(t)

	test.ExpectEquality(t, s.Mode(), session.ModeIdle)

	test.ExpectSuccess(t, s.Do(session.TriggerRecord))
	test.ExpectEquality(t, s.Mode(), session.ModeRecording)

	start := time.Now()
	tick(s, start.Add(time.Millisecond), 0)
	tick(s, start.Add(50*time.Millisecond), pad.ButtonA)
	tick(s, start.Add(80*time.Millisecond), 0)

	test.ExpectSuccess(t, s.Do(session.TriggerRecord))
	test.ExpectEquality(t, s.Mode(), session.ModeIdle)
	test.ExpectEquality(t, n.count(notify.NotifyRecordingEnded), 1)

	seq, err := store.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(seq.Events), 3)

	test.ExpectSuccess(t, s.Do(session.TriggerPlay))
	test.ExpectEquality(t, s.Mode(), session.ModePlaying)

	// wait for natural completion (80ms of events plus the trailing
	// hold)
	deadline := time.Now().Add(2 * time.Second)
	for s.Mode() != session.ModeIdle {
		if time.Now().After(deadline) {
			t.Fatal("playback did not complete")
		}
		time.Sleep(5 * time.Millisecond)
	}
	test.ExpectEquality(t, n.count(notify.NotifyPlaybackEnded), 1)
}

func TestPlayEmptySlotRejected(t *testing.T) {
	s, _, _ := newTestSession(t)

	err := s.Do(session.TriggerPlay)
	test.ExpectEquality(t, fault.Is(err, session.EmptySlot), true)
	test.ExpectEquality(t, s.Mode(), session.ModeIdle)
}

func TestSlotSelection(t *testing.T) {
	s, _, n := newTestSession(t)

	test.ExpectEquality(t, s.Slot(), 1)

	test.ExpectSuccess(t, s.Do(session.TriggerSlotUp))
	test.ExpectEquality(t, s.Slot(), 2)

	test.ExpectSuccess(t, s.Do(session.TriggerSlotDown))
	test.ExpectSuccess(t, s.Do(session.TriggerSlotDown))
	test.ExpectEquality(t, s.Slot(), sequence.NumSlots)

	test.ExpectSuccess(t, s.Do(session.TriggerSlotUp))
	test.ExpectEquality(t, s.Slot(), 1)

	test.ExpectSuccess(t, s.Select(17))
	test.ExpectEquality(t, s.Slot(), 17)

	err := s.Select(0)
	test.ExpectEquality(t, fault.Is(err, sequence.InvalidSlot), true)
	test.ExpectEquality(t, s.Slot(), 17)

	test.ExpectEquality(t, n.count(notify.NotifySlotChanged), 5)
}

func TestSlotChangeRejectedWhileBusy(t *testing.T) {
	s, _, _ := newTestSession(t)

	test.ExpectSuccess(t, s.Do(session.TriggerRecord))

	err := s.Do(session.TriggerSlotUp)
	test.ExpectEquality(t, fault.Is(err, session.BusyRecording), true)
	test.ExpectEquality(t, s.Slot(), 1)

	err = s.Do(session.TriggerPlay)
	test.ExpectEquality(t, fault.Is(err, session.BusyRecording), true)
	test.ExpectEquality(t, s.Mode(), session.ModeRecording)
}

func TestRecordingClearsSlot(t *testing.T) {
	s, store, _ := newTestSession(t)

	old := sequence.New(1, "old", []sequence.Event{
		{Offset: 0, State: pad.State{Buttons: pad.ButtonB}},
	})
	test.ExpectSuccess(t, store.Put(1, old))

	test.ExpectSuccess(t, s.Do(session.TriggerRecord))

	// the slot is cleared the moment recording starts
	seq, err := store.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, seq == nil, true)
}

func TestInterferencePromotion(t *testing.T) {
	s, store, n := newTestSession(t)

	// a long playing sequence that holds neutral throughout
	long := sequence.New(1, "long", []sequence.Event{
		{Offset: 0, State: pad.Neutral()},
		{Offset: 10 * time.Second, State: pad.Neutral()},
	})
	test.ExpectSuccess(t, store.Put(1, long))

	test.ExpectSuccess(t, s.Do(session.TriggerPlay))
	test.ExpectEquality(t, s.Mode(), session.ModePlaying)

	// the operator presses a button that playback is not holding, for
	// longer than the debounce window
	now := time.Now()
	tick(s, now, pad.ButtonA)
	tick(s, now.Add(5*time.Millisecond), pad.ButtonA)
	tick(s, now.Add(15*time.Millisecond), pad.ButtonA)

	test.ExpectEquality(t, s.Mode(), session.ModeRecording)
	test.ExpectEquality(t, n.count(notify.NotifyInterference), 1)

	// the slot still holds the old sequence until the promoted
	// recording commits
	seq, err := store.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, seq.Name, "long")

	// commit replaces it with the operator's fresh capture
	tick(s, now.Add(60*time.Millisecond), 0)
	test.ExpectSuccess(t, s.Do(session.TriggerRecord))
	test.ExpectEquality(t, s.Mode(), session.ModeIdle)

	seq, err = store.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, seq.Name, "long")
	test.ExpectEquality(t, len(seq.Events), 2)
	test.ExpectEquality(t, seq.Events[0].State.Buttons, pad.ButtonA)
}

func TestStopPlaybackNeutralizes(t *testing.T) {
	store := sequence.NewStore()
	out := &nullOutput{}
	s := session.NewSession(store, out, session.Options{}, nil)

	long := sequence.New(1, "long", []sequence.Event{
		{Offset: 0, State: pad.State{Buttons: pad.ButtonA}},
		{Offset: 10 * time.Second, State: pad.Neutral()},
	})
	test.ExpectSuccess(t, store.Put(1, long))

	// one neutralize from session warm-up
	test.ExpectEquality(t, out.neutralized, 1)

	test.ExpectSuccess(t, s.Do(session.TriggerPlay))
	time.Sleep(20 * time.Millisecond)
	test.ExpectSuccess(t, s.Do(session.TriggerPlay))

	test.ExpectEquality(t, s.Mode(), session.ModeIdle)

	out.crit.Lock()
	neutralized := out.neutralized
	out.crit.Unlock()
	test.ExpectEquality(t, neutralized, 2)
}

func TestRestartDuringTrailingHold(t *testing.T) {
	s, store, n := newTestSession(t)

	short := sequence.New(1, "short", []sequence.Event{
		{Offset: 0, State: pad.State{Buttons: pad.ButtonA}},
		{Offset: 10 * time.Millisecond, State: pad.Neutral()},
	})
	test.ExpectSuccess(t, store.Put(1, short))

	test.ExpectSuccess(t, s.Do(session.TriggerPlay))

	// 80ms in, all events have played but the final state is still being
	// held. stop and immediately restart; the first playback's shutdown
	// must not disturb the second
	time.Sleep(80 * time.Millisecond)
	test.ExpectEquality(t, s.Mode(), session.ModePlaying)

	test.ExpectSuccess(t, s.Do(session.TriggerPlay))
	test.ExpectEquality(t, s.Mode(), session.ModeIdle)
	test.ExpectSuccess(t, s.Do(session.TriggerPlay))
	test.ExpectEquality(t, s.Mode(), session.ModePlaying)

	// the first playback would have completed around 210ms from its
	// start; the second runs until roughly 290ms. in between the session
	// must still be playing
	time.Sleep(150 * time.Millisecond)
	test.ExpectEquality(t, s.Mode(), session.ModePlaying)

	// and the second playback still completes on its own
	deadline := time.Now().Add(2 * time.Second)
	for s.Mode() != session.ModeIdle {
		if time.Now().After(deadline) {
			t.Fatal("playback did not complete")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// one operator stop, one natural completion
	test.ExpectEquality(t, n.count(notify.NotifyPlaybackEnded), 2)
}

func TestQuitCommitsActiveRecording(t *testing.T) {
	s, store, _ := newTestSession(t)

	test.ExpectSuccess(t, s.Do(session.TriggerRecord))

	start := time.Now()
	tick(s, start.Add(time.Millisecond), pad.ButtonX)

	s.Quit()
	test.ExpectEquality(t, s.Mode(), session.ModeIdle)

	seq, err := store.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(seq.Events), 1)
}

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

package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/padcorder/padcorder/capture"
	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/interference"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/metrics"
	"github.com/padcorder/padcorder/notify"
	"github.com/padcorder/padcorder/playback"
	"github.com/padcorder/padcorder/sequence"
)

// sentinal errors for the session package
const (
	EmptySlot      = "session: slot %d is empty"
	BusyRecording  = "session: recording in progress"
	BusyPlaying    = "session: playback in progress"
	UnknownTrigger = "session: unknown trigger (%d)"
)

// Mode is the exclusive state of the session. Exactly one mode is active
// at any instant.
type Mode int

// List of session modes.
const (
	ModeIdle Mode = iota
	ModeRecording
	ModePlaying
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRecording:
		return "recording"
	case ModePlaying:
		return "playing"
	}
	return fmt.Sprintf("unknown mode (%d)", int(m))
}

// Trigger is an abstract operator action. The mapping from physical
// buttons or keys to triggers happens upstream; the session never sees raw
// key codes.
type Trigger int

// List of operator triggers.
const (
	// TriggerRecord toggles recording. starting a recording clears the
	// selected slot; stopping commits the captured events to it
	TriggerRecord Trigger = iota

	// TriggerPlay toggles playback of the selected slot
	TriggerPlay

	// slot selection, wrapping at the ends
	TriggerSlotUp
	TriggerSlotDown
)

// Options configures a session.
type Options struct {
	Capture      capture.Policy
	Interference interference.Policy
	Loop         playback.Loop

	// OnCommit runs, with the session lock held, after captured events
	// have been committed to a slot. used by the persistence layer to
	// autosave. may be nil
	OnCommit func(slot int)
}

// Session is the top level state machine coordinating recording, playback
// and the interference fallback. All mode transitions funnel through the
// session's mutex; the polling task (Tick, Do, Select) and the playback
// goroutine (completion) can request transitions concurrently.
type Session struct {
	crit sync.Mutex

	mode Mode
	slot int

	store *sequence.Store
	sch   *playback.Scheduler
	mon   *interference.Monitor

	// non-nil only while mode is ModeRecording
	rec *capture.Recording

	// incremented on every playback start. completion callbacks carry
	// the generation they belong to so a late callback from a finished
	// playback can never disturb a newer one
	playGen int

	// drop count already reported from the active recording
	reportedDrops int

	opts   Options
	notify notify.Notify
}

// NewSession creates a session in the idle mode with slot 1 selected. The
// output is neutralized once on construction so that stale state from a
// previous process never leaks into the first playback.
func NewSession(store *sequence.Store, out driver.Output, opts Options, n notify.Notify) *Session {
	if err := out.Neutralize(); err != nil {
		logger.Logf(logger.Allow, "session", "warm-up neutralize: %v", err)
	}

	s := &Session{
		mode:   ModeIdle,
		slot:   1,
		store:  store,
		sch:    playback.NewScheduler(out),
		mon:    interference.NewMonitor(opts.Interference),
		opts:   opts,
		notify: n,
	}
	metrics.UpdateSessionMode(int(s.mode))
	metrics.UpdateSlotsOccupied(store.Occupied())

	return s
}

// Mode returns the active session mode.
func (s *Session) Mode() Mode {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.mode
}

// Slot returns the selected slot.
func (s *Session) Slot() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.slot
}

// Do applies an operator trigger. Validation errors leave the session
// state unchanged.
func (s *Session) Do(trg Trigger) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	switch trg {
	case TriggerRecord:
		switch s.mode {
		case ModeIdle:
			return s.startRecording()
		case ModeRecording:
			return s.stopRecording(notify.NotifyRecordingEnded)
		case ModePlaying:
			return fault.Errorf(BusyPlaying)
		}

	case TriggerPlay:
		switch s.mode {
		case ModeIdle:
			return s.startPlayback()
		case ModePlaying:
			return s.stopPlayback()
		case ModeRecording:
			return fault.Errorf(BusyRecording)
		}

	case TriggerSlotUp:
		return s.changeSlot(s.slot%sequence.NumSlots + 1)

	case TriggerSlotDown:
		next := s.slot - 1
		if next < 1 {
			next = sequence.NumSlots
		}
		return s.changeSlot(next)
	}

	return fault.Errorf(UnknownTrigger, int(trg))
}

// Select changes the selected slot directly. Only valid while idle.
func (s *Session) Select(slot int) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if slot < 1 || slot > sequence.NumSlots {
		return fault.Errorf(sequence.InvalidSlot, slot, sequence.NumSlots)
	}
	return s.changeSlot(slot)
}

func (s *Session) changeSlot(slot int) error {
	switch s.mode {
	case ModeRecording:
		return fault.Errorf(BusyRecording)
	case ModePlaying:
		return fault.Errorf(BusyPlaying)
	}

	if slot != s.slot {
		s.slot = slot
		s.note(notify.NotifySlotChanged)
	}
	return nil
}

// Tick processes one polling tick of live controller state. While
// recording the tick feeds the capture stream; while playing it feeds the
// interference monitor; while idle it is discarded.
func (s *Session) Tick(smp driver.Sample) {
	s.crit.Lock()
	defer s.crit.Unlock()

	switch s.mode {
	case ModeRecording:
		s.recordingTick(smp)
	case ModePlaying:
		s.playingTick(smp)
	}
}

func (s *Session) recordingTick(smp driver.Sample) {
	s.rec.Tick(smp)

	if d := s.rec.Dropped(); d > s.reportedDrops {
		s.reportedDrops = d
		s.note(notify.NotifyTickAnomaly)
	}

	if s.rec.Full() {
		logger.Logf(logger.Allow, "session", "slot %d: recording full (%d events)", s.slot, s.rec.Len())
		_ = s.stopRecording(notify.NotifyRecordingFull)
	}
}

func (s *Session) playingTick(smp driver.Sample) {
	live := capture.Quantize(smp, s.opts.Capture)

	if !s.mon.Check(live, s.sch.LastApplied(), smp.Time) {
		return
	}

	// interference confirmed. stop the scheduler and promote the session
	// into recording on the same slot, so the operator's taken-over
	// input is captured from here on. the slot itself is untouched until
	// the promoted recording commits
	s.sch.Stop()
	s.mon.Disarm()
	metrics.RecordInterference()
	logger.Logf(logger.Allow, "session", "slot %d: interference, promoting to recording", s.slot)

	s.rec = capture.NewRecording(s.opts.Capture, smp.Time)
	s.reportedDrops = 0
	s.rec.Tick(smp)

	s.setMode(ModeRecording)
	s.note(notify.NotifyInterference)
}

// startRecording is called with the session lock held.
func (s *Session) startRecording() error {
	if err := s.store.Clear(s.slot); err != nil {
		return err
	}
	metrics.UpdateSlotsOccupied(s.store.Occupied())

	s.rec = capture.NewRecording(s.opts.Capture, time.Now())
	s.reportedDrops = 0
	s.setMode(ModeRecording)
	s.note(notify.NotifyRecordingStarted)

	return nil
}

// stopRecording commits the capture stream and returns the session to
// idle. called with the session lock held.
func (s *Session) stopRecording(end notify.Notice) error {
	seq := s.rec.Sequence(s.slot, time.Now().Format(time.DateTime))
	s.rec = nil

	if err := s.store.Put(s.slot, seq); err != nil {
		// events from a live capture stream are ordered by construction
		// so this should be impossible. return to idle regardless
		logger.Logf(logger.Allow, "session", "commit: %v", err)
		s.setMode(ModeIdle)
		return err
	}

	logger.Logf(logger.Allow, "session", "slot %d: committed %d events", s.slot, len(seq.Events))
	metrics.UpdateSlotsOccupied(s.store.Occupied())

	s.setMode(ModeIdle)
	s.note(end)

	if s.opts.OnCommit != nil {
		s.opts.OnCommit(s.slot)
	}

	return nil
}

// startPlayback is called with the session lock held.
func (s *Session) startPlayback() error {
	seq, err := s.store.Get(s.slot)
	if err != nil {
		return err
	}
	if seq == nil || seq.Empty() {
		return fault.Errorf(EmptySlot, s.slot)
	}

	s.playGen++
	gen := s.playGen

	s.mon.Arm()
	if err := s.sch.Start(seq, s.opts.Loop, func(failure error) {
		s.playbackEnded(gen, failure)
	}); err != nil {
		s.mon.Disarm()
		return err
	}

	s.setMode(ModePlaying)
	s.note(notify.NotifyPlaybackStarted)

	return nil
}

// stopPlayback is called with the session lock held.
func (s *Session) stopPlayback() error {
	s.sch.Stop()
	s.mon.Disarm()
	s.setMode(ModeIdle)
	s.note(notify.NotifyPlaybackEnded)
	return nil
}

// playbackEnded runs in the scheduler goroutine when playback completes on
// its own or fails. a completion that raced with an operator stop or an
// interference promotion arrives with the session no longer playing, or
// with a stale generation, and is ignored.
func (s *Session) playbackEnded(gen int, failure error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.mode != ModePlaying || gen != s.playGen {
		return
	}

	s.mon.Disarm()
	s.setMode(ModeIdle)

	if failure != nil {
		s.note(notify.NotifyPlaybackAborted)
	} else {
		s.note(notify.NotifyPlaybackEnded)
	}
}

// Quit ends any active recording or playback and returns the session to
// idle. an active recording is committed.
func (s *Session) Quit() {
	s.crit.Lock()
	defer s.crit.Unlock()

	switch s.mode {
	case ModeRecording:
		_ = s.stopRecording(notify.NotifyRecordingEnded)
	case ModePlaying:
		_ = s.stopPlayback()
	}
}

func (s *Session) setMode(mode Mode) {
	s.mode = mode
	metrics.UpdateSessionMode(int(mode))
}

func (s *Session) note(n notify.Notice) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(n); err != nil {
		logger.Logf(logger.Allow, "session", "notify: %v", err)
	}
}

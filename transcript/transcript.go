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

// Package transcript persists the slot store to a JSON document and
// restores it. Button state is written as a list of button names rather
// than a raw bitmask, so a transcript can be read and edited by hand.
//
// Saving is atomic on the file level: the document is written to a
// temporary file and renamed into place, and the previous transcript is
// kept as a .bak alongside.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padcorder/padcorder/capture"
	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/sequence"
)

// Version of the transcript format. A transcript with a different major
// version is refused on load.
const Version = "2.0.0"

// suffix of the backup file kept alongside the transcript
const backupSuffix = ".bak"

// sentinal errors for the transcript package
const (
	UnsupportedVersion = "transcript: version %s not supported (want %s)"
	MalformedDocument  = "transcript: %s: %v"
	UnknownButton      = "transcript: slot %d: %v"
)

type document struct {
	Version   string           `json:"version"`
	SavedAt   time.Time        `json:"saved_at"`
	Sequences map[string]entry `json:"sequences"`
}

type entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Events    []event   `json:"events"`
}

type event struct {
	OffsetMs   float64   `json:"offset_ms"`
	Buttons    []string  `json:"buttons,omitempty"`
	LeftStick  []float64 `json:"left_stick,omitempty"`
	RightStick []float64 `json:"right_stick,omitempty"`
	Triggers   []float64 `json:"triggers,omitempty"`
}

// Save writes every occupied slot to the transcript file. An existing
// transcript is kept as a backup with a .bak suffix.
func Save(path string, store *sequence.Store) error {
	doc := document{
		Version:   Version,
		SavedAt:   time.Now(),
		Sequences: make(map[string]entry),
	}

	for slot, seq := range store.ExportAll() {
		doc.Sequences[strconv.Itoa(slot)] = encode(seq)
	}

	d, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fault.Errorf(MalformedDocument, path, err)
	}

	// write to a temporary file in the same directory and rename into
	// place, so a crash mid-write never leaves a torn transcript
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return fault.Errorf(MalformedDocument, path, err)
	}
	if _, err := tmp.Write(d); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fault.Errorf(MalformedDocument, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fault.Errorf(MalformedDocument, path, err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+backupSuffix); err != nil {
			logger.Logf(logger.Allow, "transcript", "backup: %v", err)
		}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fault.Errorf(MalformedDocument, path, err)
	}

	logger.Logf(logger.Allow, "transcript", "saved %d sequences to %s", len(doc.Sequences), path)

	return nil
}

// Load reads a transcript file and imports it into the store as a single
// all-or-nothing operation. A missing file is not an error; the store is
// simply left as it is.
func Load(path string, store *sequence.Store) error {
	d, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fault.Errorf(MalformedDocument, path, err)
	}

	var doc document
	if err := json.Unmarshal(d, &doc); err != nil {
		return fault.Errorf(MalformedDocument, path, err)
	}

	if !compatible(doc.Version) {
		return fault.Errorf(UnsupportedVersion, doc.Version, Version)
	}

	m := make(map[int]*sequence.Sequence)
	for k, ent := range doc.Sequences {
		slot, err := strconv.Atoi(k)
		if err != nil {
			return fault.Errorf(MalformedDocument, path, fmt.Sprintf("bad slot key %q", k))
		}
		seq, err := decode(slot, ent)
		if err != nil {
			return err
		}
		m[slot] = seq
	}

	if err := store.ImportAll(m); err != nil {
		return err
	}

	logger.Logf(logger.Allow, "transcript", "loaded %d sequences from %s", len(m), path)

	return nil
}

// compatible checks the major version component only. minor and patch
// differences are assumed to be readable.
func compatible(version string) bool {
	want, _, _ := strings.Cut(Version, ".")
	got, _, _ := strings.Cut(version, ".")
	return got == want
}

func encode(seq *sequence.Sequence) entry {
	ent := entry{
		ID:        seq.ID,
		Name:      seq.Name,
		CreatedAt: seq.CreatedAt,
		Events:    make([]event, 0, len(seq.Events)),
	}

	for _, ev := range seq.Events {
		jev := event{
			OffsetMs: float64(ev.Offset.Microseconds()) / 1000.0,
			Buttons:  ev.State.Buttons.Names(),
		}
		if ev.State.LeftStick != (pad.Stick{}) {
			jev.LeftStick = []float64{ev.State.LeftStick.X, ev.State.LeftStick.Y}
		}
		if ev.State.RightStick != (pad.Stick{}) {
			jev.RightStick = []float64{ev.State.RightStick.X, ev.State.RightStick.Y}
		}
		if ev.State.Triggers != (pad.Triggers{}) {
			jev.Triggers = []float64{ev.State.Triggers.Left, ev.State.Triggers.Right}
		}
		ent.Events = append(ent.Events, jev)
	}

	return ent
}

func decode(slot int, ent entry) (*sequence.Sequence, error) {
	jevs := ent.Events

	// an oversized slot is truncated rather than refused. the cap matches
	// what a recording can produce
	if len(jevs) > capture.DefaultMaxEvents {
		logger.Logf(logger.Allow, "transcript", "slot %d: truncating %d events to %d", slot, len(jevs), capture.DefaultMaxEvents)
		jevs = jevs[:capture.DefaultMaxEvents]
	}

	events := make([]sequence.Event, 0, len(jevs))

	for _, jev := range jevs {
		ev := sequence.Event{
			Offset: time.Duration(jev.OffsetMs * float64(time.Millisecond)),
		}

		for _, name := range jev.Buttons {
			b, err := pad.ParseButton(name)
			if err != nil {
				return nil, fault.Errorf(UnknownButton, slot, err)
			}
			ev.State.Buttons |= b
		}

		if len(jev.LeftStick) == 2 {
			ev.State.LeftStick = pad.Stick{X: jev.LeftStick[0], Y: jev.LeftStick[1]}
		}
		if len(jev.RightStick) == 2 {
			ev.State.RightStick = pad.Stick{X: jev.RightStick[0], Y: jev.RightStick[1]}
		}
		if len(jev.Triggers) == 2 {
			ev.State.Triggers = pad.Triggers{Left: jev.Triggers[0], Right: jev.Triggers[1]}
		}

		events = append(events, ev)
	}

	seq := sequence.New(slot, ent.Name, events)

	// a malformed or absent id keeps the freshly generated one
	if uuid.Validate(ent.ID) == nil {
		seq.ID = ent.ID
	}
	if !ent.CreatedAt.IsZero() {
		seq.CreatedAt = ent.CreatedAt
	}

	return seq, nil
}

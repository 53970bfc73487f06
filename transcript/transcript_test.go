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

package transcript_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/padcorder/padcorder/fault"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/sequence"
	"github.com/padcorder/padcorder/test"
	"github.com/padcorder/padcorder/transcript"
)

func buildStore(t *testing.T) *sequence.Store {
	t.Helper()

	store := sequence.NewStore()
	seq := sequence.New(3, "jump combo", []sequence.Event{
		{Offset: 0, State: pad.Neutral()},
		{Offset: 50 * time.Millisecond, State: pad.State{
			Buttons:   pad.ButtonA | pad.ButtonDPadRight,
			LeftStick: pad.Stick{X: 1.0},
		}},
		{Offset: 120*time.Millisecond + 500*time.Microsecond, State: pad.State{
			Triggers: pad.Triggers{Right: 1.0},
		}},
	})
	test.ExpectSuccess(t, store.Put(3, seq))

	test.ExpectSuccess(t, store.Put(17, sequence.New(17, "", []sequence.Event{
		{Offset: 0, State: pad.State{Buttons: pad.ButtonStart}},
	})))

	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcorder.json")

	store := buildStore(t)
	test.ExpectSuccess(t, transcript.Save(path, store))

	restored := sequence.NewStore()
	test.ExpectSuccess(t, transcript.Load(path, restored))
	test.ExpectEquality(t, restored.Occupied(), 2)

	seq, err := restored.Get(3)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, seq.Name, "jump combo")
	test.ExpectEquality(t, len(seq.Events), 3)
	test.ExpectEquality(t, seq.Duration, 120*time.Millisecond+500*time.Microsecond)

	// full state survives, including sub-millisecond offsets
	orig, _ := store.Get(3)
	test.ExpectEquality(t, seq.ID, orig.ID)
	for i := range seq.Events {
		test.ExpectEquality(t, seq.Events[i].Offset, orig.Events[i].Offset)
		test.ExpectEquality(t, seq.Events[i].State, orig.Events[i].State)
	}
}

func TestLoadMissingFileIsNoop(t *testing.T) {
	store := buildStore(t)
	err := transcript.Load(filepath.Join(t.TempDir(), "absent.json"), store)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, store.Occupied(), 2)
}

func TestVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcorder.json")

	// a different minor version loads fine
	d := []byte(`{"version": "2.9.1", "sequences": {}}`)
	test.ExpectSuccess(t, os.WriteFile(path, d, 0644))
	test.ExpectSuccess(t, transcript.Load(path, sequence.NewStore()))

	// a different major version is refused
	d = []byte(`{"version": "1.0.0", "sequences": {}}`)
	test.ExpectSuccess(t, os.WriteFile(path, d, 0644))
	err := transcript.Load(path, sequence.NewStore())
	test.ExpectEquality(t, fault.Is(err, transcript.UnsupportedVersion), true)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcorder.json")
	test.ExpectSuccess(t, os.WriteFile(path, []byte("not json"), 0644))

	store := buildStore(t)
	err := transcript.Load(path, store)
	test.ExpectEquality(t, fault.Is(err, transcript.MalformedDocument), true)

	// the store is untouched on failure
	test.ExpectEquality(t, store.Occupied(), 2)
}

func TestLoadRejectsUnknownButton(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcorder.json")
	d := []byte(`{
		"version": "2.0.0",
		"sequences": {
			"1": {"events": [{"offset_ms": 0, "buttons": ["megabutton"]}]}
		}
	}`)
	test.ExpectSuccess(t, os.WriteFile(path, d, 0644))

	err := transcript.Load(path, sequence.NewStore())
	test.ExpectEquality(t, fault.Is(err, transcript.UnknownButton), true)
}

func TestLoadRejectsNegativeOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcorder.json")
	d := []byte(`{
		"version": "2.0.0",
		"sequences": {
			"1": {"events": [{"offset_ms": -5}, {"offset_ms": 10, "buttons": ["a"]}]}
		}
	}`)
	test.ExpectSuccess(t, os.WriteFile(path, d, 0644))

	store := buildStore(t)
	err := transcript.Load(path, store)
	test.ExpectEquality(t, fault.Is(err, sequence.UnorderedEvents), true)

	// the store is untouched on failure
	test.ExpectEquality(t, store.Occupied(), 2)
}

func TestSaveKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcorder.json")

	store := buildStore(t)
	test.ExpectSuccess(t, transcript.Save(path, store))

	// second save moves the first transcript to the backup
	test.ExpectSuccess(t, store.Clear(17))
	test.ExpectSuccess(t, transcript.Save(path, store))

	restored := sequence.NewStore()
	test.ExpectSuccess(t, transcript.Load(path, restored))
	test.ExpectEquality(t, restored.Occupied(), 1)

	backup := sequence.NewStore()
	test.ExpectSuccess(t, transcript.Load(path+".bak", backup))
	test.ExpectEquality(t, backup.Occupied(), 2)
}

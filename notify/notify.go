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

// Package notify is how the session reports conditions to whatever user
// facing layer is attached (an overlay, a terminal, or just the log). The
// core never swallows a condition; everything that is not returned as an
// error to the caller is reported through a Notify implementation.
package notify

// Notice describes events that change the presentation of the session.
// These notifications can be used to present additional information to the
// user.
type Notice string

// List of defined notifications.
const (
	// recording started and ended normally
	NotifyRecordingStarted Notice = "NotifyRecordingStarted"
	NotifyRecordingEnded   Notice = "NotifyRecordingEnded"

	// recording stopped because the per-slot event limit was reached
	NotifyRecordingFull Notice = "NotifyRecordingFull"

	// playback started and ended normally
	NotifyPlaybackStarted Notice = "NotifyPlaybackStarted"
	NotifyPlaybackEnded   Notice = "NotifyPlaybackEnded"

	// playback ended because the output sink rejected a state write
	NotifyPlaybackAborted Notice = "NotifyPlaybackAborted"

	// operator input detected during playback. the session has been
	// promoted to the recording state
	NotifyInterference Notice = "NotifyInterference"

	// the selected slot has changed
	NotifySlotChanged Notice = "NotifySlotChanged"

	// a polling tick arrived out of order and was dropped
	NotifyTickAnomaly Notice = "NotifyTickAnomaly"
)

// Notify implementations receive notices from the session. Implementations
// must not block; a notice is advisory and the session will not wait on
// its delivery.
type Notify interface {
	Notify(notice Notice) error
}

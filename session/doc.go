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

// Package session implements the state machine that coordinates
// recording, playback and the interference fallback. The session is in
// exactly one of three modes at any instant: idle, recording or playing.
//
// Operator actions arrive as abstract triggers through Do and Select.
// Live controller state arrives through Tick from the polling loop. The
// playback scheduler reports completion from its own goroutine. All three
// paths serialize on the session mutex, so a mode transition is atomic
// with respect to every observer.
//
// The interesting transition is the interference fallback. While a
// sequence is playing, live input is compared against the state the
// scheduler is currently applying. If the operator starts pressing
// controls, playback stops and the session promotes itself into recording
// on the same slot, so the operator's take-over is captured from the
// moment it was detected. The slot keeps its old sequence until the
// promoted recording commits.
package session

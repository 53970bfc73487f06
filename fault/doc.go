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

// Package fault is the error mechanism used throughout the project. Errors
// are created with the Errorf() function against a pattern string. The
// pattern doubles as the error's identity: callers that need to react to a
// specific condition compare with Is() or Has() rather than unwrapping
// message text.
//
// Pattern strings are declared as constants in the package that raises
// them. For example:
//
//	const InvalidSlot = "store: invalid slot %d"
//
//	if fault.Is(err, sequence.InvalidSlot) {
//		...
//	}
//
// Errors from outside the project can be wrapped in the usual way by using
// the %v verb in the pattern.
package fault

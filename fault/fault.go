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

package fault

import (
	"fmt"
	"strings"
)

// fault is an implementation of the go language error interface.
type fault struct {
	pattern string
	values  []interface{}
}

// Errorf creates a new fault error.
//
// Unlike the Errorf() function in the fmt package the first argument is
// named "pattern" not "format". The pattern string is what the Is() and
// Has() functions test against so it is more than just formatting
// instructions.
func Errorf(pattern string, values ...interface{}) error {
	// the arguments are stored and not formatted until the Error() function
	// is called
	return fault{
		pattern: pattern,
		values:  values,
	}
}

// Error returns the normalised error message. Normalisation being the
// removal of duplicate adjacent message parts in the error chain. It doesn't
// affect letter-case or white space.
//
// Implements the go language error interface.
func (er fault) Error() string {
	s := fmt.Errorf(er.pattern, er.values...).Error()

	// de-duplicate error message parts
	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}

	return strings.Join(p, ": ")
}

// IsAny checks if the error is a fault error of any pattern.
func IsAny(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(fault); ok {
		return true
	}

	return false
}

// Is checks if error is a fault error with the specified pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}

	if er, ok := err.(fault); ok {
		return er.pattern == pattern
	}

	return false
}

// Has checks if error is a fault error with the specified pattern somewhere
// in the chain.
func Has(err error, pattern string) bool {
	if err == nil {
		return false
	}

	if !IsAny(err) {
		return false
	}

	if Is(err, pattern) {
		return true
	}

	for i := range err.(fault).values {
		if e, ok := err.(fault).values[i].(fault); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}

	return false
}

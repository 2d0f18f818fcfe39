// SPDX-License-Identifier: EPL-2.0

package nbs

import (
	"errors"
	"fmt"
)

var (
	ErrCorruptString = errors.New("corrupt string field")
)

// UnsupportedVersionError is returned for NBS format versions this reader
// does not understand.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported NBS version %d", e.Version)
}

// MalformedTempoError is returned when a tempo-change note (or the header)
// implies a non-positive tempo, which would stall the tick timeline.
type MalformedTempoError struct {
	Tick  int
	Tempo float64
}

func (e *MalformedTempoError) Error() string {
	return fmt.Sprintf("malformed tempo %.2f t/s at tick %d", e.Tempo, e.Tick)
}

// SPDX-License-Identifier: EPL-2.0

package nbswave

import "fmt"

// MissingInstrumentError is returned when a note references an instrument
// with no resolvable sample and the render was not told to ignore missing
// instruments.
type MissingInstrumentError struct {
	ID   int
	Name string
	File string
}

func (e *MissingInstrumentError) Error() string {
	return fmt.Sprintf("sound file for instrument %s was not found: %s", e.Name, e.File)
}

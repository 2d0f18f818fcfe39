package sounds

import "fmt"

// UnsupportedFormatError is returned for sample files whose extension maps
// to no registered decoder.
type UnsupportedFormatError struct {
	File   string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("no decoder for sample %q (format %q)", e.File, e.Format)
}

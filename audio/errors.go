// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize  = errors.New("dst size must be multiple of channels")
	ErrFormatMismatch  = errors.New("sound format does not match mixer format")
	ErrInvalidChannels = errors.New("channel count must be positive")
	ErrInvalidSpeed    = errors.New("speed factor must be positive")
)

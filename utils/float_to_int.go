package utils

// Float32ToInt16 converts a normalized float32 sample to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Float32ToInt converts a normalized float32 sample to signed PCM at the
// given bit depth (8, 16, 24 or 32 bits).
func Float32ToInt(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	max := float64(int64(1)<<(bitDepth-1) - 1)
	return int(float64(x) * max)
}

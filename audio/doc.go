// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level audio processing primitives of the
// renderer.
//
// The building blocks are:
//   - Source interface for streaming audio input
//   - Resampler for sample rate conversion (cubic interpolation)
//   - ChannelMixer for channel count conversion
//   - Sound for fully decoded in-memory buffers (sync, speed, gain, pan)
//   - Mixer for additive overlay into a growable output buffer
//   - Track for the finished, immutable render result
//   - Registry for decoder registration by format key
//
// # Sample Format
//
// Audio samples are represented as interleaved float32 in [-1.0, 1.0]:
//   - 0.0 represents silence
//   - ±1.0 represents maximum amplitude (full scale)
//
// The normalized format keeps intermediate processing free of bit-depth
// concerns; clipping is only dealt with once, in Mixer.Finalize.
//
// # Streaming vs. Buffers
//
// Decoders and the resampling pipeline are streaming (Source); the mixing
// stage works on whole in-memory Sounds because note rendering overlays the
// same short sample at many positions. ReadAll bridges the two:
//
//	src, _ := decoder.Decode(file)
//	sound, _ := audio.ReadAll(src)
//	shifted, _ := sound.ChangeSpeed(audio.KeyToSpeed(7))
//
// # Mixing
//
// The Mixer owns its output buffer exclusively. Overlay adds samples at a
// millisecond position, growing the buffer with zero padding as needed, and
// Finalize scales the result down if it exceeds full scale:
//
//	mixer := audio.NewMixer(44100, 2, 2)
//	mixer.Overlay(sound, 0)
//	mixer.Overlay(sound, 50)
//	track := mixer.Finalize()
//
// Overlay is additive: overlapping sounds sum sample by sample. Since
// addition commutes, overlay order does not affect the result beyond
// floating point rounding, but all overlays must complete before Finalize.
//
// # Error Handling
//
// Streaming reads return io.EOF when no more data is available. Other
// errors indicate problems with the source or processing.
package audio

// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE PCM audio.
//
// The decoder scans chunks until the data chunk and supports integer PCM at
// 8, 16, 24 and 32 bits per sample:
//
//	decoder := wav.Decoder{}
//	src, err := decoder.Decode(file)
//
// The encoder writes integer PCM WAV through github.com/go-audio/wav and
// implements audio.TrackEncoder, making it the export collaborator for
// rendered tracks:
//
//	track.Save("out.wav", opts, wav.Encoder{})
package wav

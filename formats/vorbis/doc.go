// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio through
// github.com/jfreymuth/oggvorbis. Note block instrument samples ship as
// .ogg files, making this the decoder the renderer exercises most.
package vorbis

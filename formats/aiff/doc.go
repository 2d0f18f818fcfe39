// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF audio through github.com/go-audio/aiff.
package aiff

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reply

import (
	"strings"
	"time"

	"github.com/jeranaias/sessionchat/internal/util"
)

// Reveal defaults.
const (
	DefaultChunkSize  = 40
	DefaultChunkDelay = 30 * time.Millisecond
)

// Revealer shows a finished text piece by piece. Chunks are rune-based and
// arrive in order; each one is preceded by Delay.
type Revealer struct {
	ChunkSize int
	Delay     time.Duration
	// Sleep is time.Sleep unless replaced (tests use a recorder).
	Sleep func(time.Duration)
}

// NewRevealer returns a revealer with the default chunk size and delay.
func NewRevealer() *Revealer {
	return &Revealer{
		ChunkSize: DefaultChunkSize,
		Delay:     DefaultChunkDelay,
		Sleep:     time.Sleep,
	}
}

// Reveal feeds text to emit chunk by chunk together with the text revealed
// so far, and returns the full text. It always runs to completion.
func (r *Revealer) Reveal(text string, emit func(chunk, revealed string)) string {
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var buf strings.Builder
	buf.Grow(len(text))
	for _, chunk := range util.ChunkRunes(text, r.ChunkSize) {
		if r.Delay > 0 {
			sleep(r.Delay)
		}
		buf.WriteString(chunk)
		if emit != nil {
			emit(chunk, buf.String())
		}
	}
	return buf.String()
}

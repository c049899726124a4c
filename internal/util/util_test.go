// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "value.json")

	if err := AtomicWriteFile(path, []byte(`{"a":1}`), 0600, 0700); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != `{"a":1}` {
		t.Errorf("Content = %q, want %q", content, `{"a":1}`)
	}
}

func TestAtomicWriteFile_OverwritesWithoutTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "value.json")

	if err := AtomicWriteFile(path, []byte("first"), 0600, 0700); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0600, 0700); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "second" {
		t.Errorf("Content = %q, want %q", content, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestChunkRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		size int
		want []string
	}{
		{"empty", "", 40, nil},
		{"shorter than size", "Hallo", 40, []string{"Hallo"}},
		{"exact multiple", "abcdef", 3, []string{"abc", "def"}},
		{"remainder", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"umlauts stay whole", "äöüß", 3, []string{"äöü", "ß"}},
		{"non-positive size", "abc", 0, []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkRunes(tt.in, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("ChunkRunes(%q, %d) = %q, want %q", tt.in, tt.size, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if strings.Join(got, "") != tt.in {
				t.Errorf("chunks do not reassemble to input")
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("ä", 50)

	if got := TruncateRunes("kurz", 48, 45, "…"); got != "kurz" {
		t.Errorf("short input changed: %q", got)
	}

	got := TruncateRunes(long, 48, 45, "…")
	if RuneLen(got) != 46 {
		t.Errorf("RuneLen = %d, want 46", RuneLen(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("missing ellipsis: %q", got)
	}

	// Trailing whitespace before the cut is trimmed.
	spaced := strings.Repeat("a", 44) + "  " + strings.Repeat("b", 10)
	got = TruncateRunes(spaced, 48, 45, "…")
	if got != strings.Repeat("a", 44)+"…" {
		t.Errorf("TruncateRunes = %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  Wie  hoch\tist\n der Preis? "); got != "Wie hoch ist der Preis?" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("Projekt", 20); got != "Projekt" {
		t.Errorf("TruncateWidth short = %q", got)
	}
	if got := TruncateWidth("Ein sehr langer Projektname", 10); got != "Ein seh..." {
		t.Errorf("TruncateWidth = %q, want %q", got, "Ein seh...")
	}
	if got := TruncateWidth("abc", 0); got != "" {
		t.Errorf("TruncateWidth zero = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
}

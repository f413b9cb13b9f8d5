package chunking

import (
	"strings"
	"testing"
)

func TestSplitRespectsSizeAndOverlap(t *testing.T) {
	s := NewSplitter(100, 20)
	text := strings.Repeat("abcdefghij", 25)

	parts := s.Split(text)
	if len(parts) < 3 {
		t.Fatalf("expected at least 3 parts, got %d", len(parts))
	}
	for i, part := range parts {
		if len([]rune(part)) > 100 {
			t.Fatalf("part %d exceeds chunk size: %d runes", i, len([]rune(part)))
		}
	}
	// Consecutive parts share the overlap region.
	if !strings.HasPrefix(parts[1], parts[0][len(parts[0])-20:]) {
		t.Fatalf("expected part 1 to start with the overlap tail of part 0")
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter(100, 20)
	if parts := s.Split(""); parts != nil {
		t.Fatalf("expected nil for empty input, got %v", parts)
	}
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	s := NewSplitter(100, 20)
	parts := s.Split("short text")
	if len(parts) != 1 || parts[0] != "short text" {
		t.Fatalf("expected single chunk, got %v", parts)
	}
}

package usecase

import (
	"strings"
	"testing"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

type detectorFake struct {
	directive *domain.VisualDirective
}

func (f *detectorFake) Detect(string) *domain.VisualDirective { return f.directive }

func newTestSynthesizer(directive *domain.VisualDirective) *Synthesizer {
	// Pin the intro choice so output is deterministic under test.
	return NewSynthesizer(&detectorFake{directive: directive}, func(int) int { return 0 })
}

func TestSynthesizeGreetingFallback(t *testing.T) {
	s := newTestSynthesizer(nil)

	got := s.Synthesize("hello", "", nil)
	if !strings.Contains(got, "Greetings. I am VIRAAT") {
		t.Fatalf("expected greeting fallback, got %q", got)
	}
}

func TestSynthesizeIdentityFallback(t *testing.T) {
	s := newTestSynthesizer(nil)

	got := s.Synthesize("who are you", "", nil)
	if !strings.Contains(got, "Virtual Intelligence Reporting") {
		t.Fatalf("expected identity fallback, got %q", got)
	}
}

func TestSynthesizeGenericFallbackOnShortContext(t *testing.T) {
	s := newTestSynthesizer(nil)

	got := s.Synthesize("supply depot layout", "x", nil)
	if !strings.Contains(got, "could not find specific matches") {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestSynthesizeStructuredSections(t *testing.T) {
	s := newTestSynthesizer(nil)
	context := domain.FormatContext([]domain.RankedMatch{
		{Chunk: domain.Chunk{
			Text:   "Radio communications require encrypted channels. Couriers are a fallback option.",
			Source: "signals.md",
		}, Similarity: 0.8},
		{Chunk: domain.Chunk{
			Text:   "Encrypted channels rotate keys weekly.",
			Source: "crypto.md",
		}, Similarity: 0.7},
	})

	got := s.Synthesize("What are encrypted communications?", context, nil)

	if !strings.Contains(got, "#### Key Intelligence Points:") {
		t.Fatalf("missing summary section in %q", got)
	}
	if !strings.Contains(got, "#### Detailed Analysis:") {
		t.Fatalf("missing detailed section in %q", got)
	}
	if !strings.Contains(got, "- **signals.md**: Radio communications require encrypted channels.") {
		t.Fatalf("summary should cite the best sentence, got %q", got)
	}
	if !strings.Contains(got, "**From signals.md**:") || !strings.Contains(got, "**From crypto.md**:") {
		t.Fatalf("detailed section should include both records, got %q", got)
	}
}

func TestSynthesizeDynamicCutoffDropsWeakRecords(t *testing.T) {
	s := newTestSynthesizer(nil)
	context := domain.FormatContext([]domain.RankedMatch{
		{Chunk: domain.Chunk{Text: "Primary match body.", Source: "strong.md"}, Similarity: 0.9},
		{Chunk: domain.Chunk{Text: "Tangential match body.", Source: "weak.md"}, Similarity: 0.5},
	})

	got := s.Synthesize("query terms", context, nil)

	// 0.5 < 0.8 * 0.9: the weak record is excluded from the detailed section.
	if strings.Contains(got, "**From weak.md**:") {
		t.Fatalf("weak record should be cut, got %q", got)
	}
	if !strings.Contains(got, "**From strong.md**:") {
		t.Fatalf("strong record should survive, got %q", got)
	}
}

func TestSynthesizeDeduplicatesByPrefix(t *testing.T) {
	s := newTestSynthesizer(nil)
	shared := strings.Repeat("same leading fifty characters of body text ", 2)
	context := domain.FormatContext([]domain.RankedMatch{
		{Chunk: domain.Chunk{Text: shared + "tail one", Source: "first.md"}, Similarity: 0.9},
		{Chunk: domain.Chunk{Text: shared + "tail two differs", Source: "second.md"}, Similarity: 0.88},
	})

	got := s.Synthesize("query", context, nil)

	if !strings.Contains(got, "**From first.md**:") {
		t.Fatalf("first record should be emitted, got %q", got)
	}
	if strings.Contains(got, "**From second.md**:") {
		t.Fatalf("duplicate-prefixed record should be skipped, got %q", got)
	}
}

func TestSynthesizeAppendsVisualMarker(t *testing.T) {
	directive := &domain.VisualDirective{
		Kind:       domain.DirectiveKind3DView,
		EntityID:   "ak47",
		EntityType: "weapon",
		EntityName: "AK-47 Assault Rifle",
	}
	s := newTestSynthesizer(directive)
	context := domain.FormatContext([]domain.RankedMatch{
		{Chunk: domain.Chunk{Text: "The AK-47 fires 7.62mm rounds.", Source: "weapons.md"}, Similarity: 0.9},
	})

	got := s.Synthesize("show me the ak-47", context, nil)

	if !strings.Contains(got, visualMarkerPrefix) {
		t.Fatalf("expected visual marker in %q", got)
	}
	if !strings.Contains(got, "Commencing 3D Visualization for AK-47 Assault Rifle") {
		t.Fatalf("expected visualization remark in %q", got)
	}
}

func TestBestSentencePrefersQueryTerms(t *testing.T) {
	text := "Rations are stored in depot B. Encrypted radios are issued to every squad. Parade rehearsal is optional."
	got := bestSentence(text, "who gets encrypted radios")
	if got != "Encrypted radios are issued to every squad." {
		t.Fatalf("bestSentence = %q", got)
	}
}

func TestSplitSentencesGuardsAbbreviations(t *testing.T) {
	got := splitSentences("Use solvent, e.g. CLP, for cleaning. Dry thoroughly.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "Use solvent, e.g. CLP, for cleaning." {
		t.Fatalf("first sentence = %q", got[0])
	}
}

func TestIntroVariesWithPicker(t *testing.T) {
	detector := &detectorFake{}
	first := NewSynthesizer(detector, func(int) int { return 0 })
	second := NewSynthesizer(detector, func(int) int { return 2 })

	context := domain.FormatContext([]domain.RankedMatch{
		{Chunk: domain.Chunk{Text: "some body text here", Source: "a.md"}, Similarity: 0.5},
	})
	if first.Synthesize("q", context, nil) == second.Synthesize("q", context, nil) {
		t.Fatalf("different picker indices should produce different intros")
	}
}

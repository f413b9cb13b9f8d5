package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"unicode"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

const (
	// Context shorter than this is treated as "no data" and answered with a
	// canned fallback.
	minContextChars = 10

	// Records scoring below this fraction of the best match are dropped from
	// the detailed section. Strict on purpose: once a strong match exists,
	// tangential passages add noise, not coverage.
	detailCutoffRatio = 0.8

	// Records whose trimmed body shares its first 50 characters with an
	// already-emitted record are considered duplicates.
	dedupPrefixChars = 50

	// How many records feed the summary section.
	summaryRecords = 3

	visualMarkerPrefix = "[VISUAL_DIRECTIVE: "
)

// Function words ignored when scoring sentences against the query.
var sentenceStopTerms = map[string]struct{}{
	"what": {}, "are": {}, "is": {}, "the": {}, "a": {},
	"an": {}, "in": {}, "on": {}, "of": {}, "to": {},
}

// Synthesizer turns a formatted context block into a structured,
// persona-flavored answer. It keeps no state across calls; the only
// non-determinism is the intro template choice, injectable for tests.
type Synthesizer struct {
	detector ports.IntentDetector
	pick     func(n int) int
}

// NewSynthesizer builds a synthesizer with uniform-random intro selection.
// A nil picker gets the default randomness source.
func NewSynthesizer(detector ports.IntentDetector, pick func(n int) int) *Synthesizer {
	if pick == nil {
		pick = rand.Intn
	}
	return &Synthesizer{detector: detector, pick: pick}
}

// Synthesize produces the final answer text. History is accepted as plain
// prior-turn context; no dialogue planning happens on top of it.
func (s *Synthesizer) Synthesize(query, context string, history []domain.HistoryTurn) string {
	_ = history
	if len(strings.TrimSpace(context)) < minContextChars {
		return fallbackAnswer(query)
	}
	return s.structuredAnswer(query, context)
}

func (s *Synthesizer) structuredAnswer(query, context string) string {
	directive := s.detector.Detect(query)

	records := domain.ParseContext(context)
	slog.Debug("context_parsed", "context_chars", len(context), "records", len(records))

	var b strings.Builder
	b.WriteString(s.personaIntro(query, len(records) > 0))
	b.WriteString("\n\n")

	if len(records) == 0 {
		b.WriteString(noTacticalDataRemark)
	} else {
		s.writeSummarySection(&b, query, records)
		s.writeDetailedSection(&b, records)
	}

	if directive != nil {
		writeVisualBlock(&b, directive)
	}
	return b.String()
}

func (s *Synthesizer) writeSummarySection(b *strings.Builder, query string, records []domain.ContextRecord) {
	b.WriteString("#### Key Intelligence Points:\n")
	limit := summaryRecords
	if len(records) < limit {
		limit = len(records)
	}
	for _, rec := range records[:limit] {
		fmt.Fprintf(b, "- **%s**: %s\n", rec.Source, bestSentence(rec.Body, query))
	}
}

func (s *Synthesizer) writeDetailedSection(b *strings.Builder, records []domain.ContextRecord) {
	topScore := records[0].Similarity

	b.WriteString("\n#### Detailed Analysis:\n")
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.Similarity < topScore*detailCutoffRatio {
			continue
		}
		body := strings.TrimSpace(rec.Body)
		prefix := runePrefix(body, dedupPrefixChars)
		if _, dup := seen[prefix]; dup {
			continue
		}
		seen[prefix] = struct{}{}
		fmt.Fprintf(b, "**From %s**:\n%s\n\n", rec.Source, body)
	}
}

func writeVisualBlock(b *strings.Builder, directive *domain.VisualDirective) {
	payload, err := json.Marshal(directive)
	if err != nil {
		slog.Error("marshal_visual_directive", "error", err)
		return
	}
	fmt.Fprintf(b, "\n\n%s%s]\n", visualMarkerPrefix, payload)
	fmt.Fprintf(b, "\n\n> *Commencing 3D Visualization for %s...*", directive.EntityName)
}

const noTacticalDataRemark = "\n\nMy archives do not contain specific tactical data on this subject. " +
	"Recommendation: Verify the terminology or request a broader strategic overview."

func (s *Synthesizer) personaIntro(query string, hasData bool) string {
	if !hasData {
		return "Commander, my strategic assessment yielded no specific matches in the current database."
	}
	intros := []string{
		fmt.Sprintf("Commander, I have analyzed the intelligence database regarding **'%s'** and found the following:", query),
		fmt.Sprintf("Strategic Report: Analysis of **'%s'** complete. Accessing classified directives:", query),
		fmt.Sprintf("VIRAAT System Active. Retrieving technical specifications for **'%s'**:", query),
	}
	return intros[s.pick(len(intros))]
}

func fallbackAnswer(query string) string {
	lower := strings.ToLower(query)

	for _, greeting := range []string{"hello", "hi", "greet"} {
		if strings.Contains(lower, greeting) {
			return "Greetings. I am VIRAAT, your tactical AI assistant. How can I assist with military intelligence or protocols today?"
		}
	}
	for _, identity := range []string{"who", "what are you"} {
		if strings.Contains(lower, identity) {
			return "I am VIRAAT (Virtual Intelligence Reporting & Analysis Autonomous Tool). I operate using advanced retrieval algorithms to provide accurate military data without relying on external APIs or heavy models."
		}
	}
	return "VIRAAT Analysis: I could not find specific matches in the current knowledge base for your query. Please ensure your query contains relevant military terminology or check the knowledge base sources."
}

// bestSentence picks the sentence containing the most distinct query terms.
// Ties keep the first sentence scanned.
func bestSentence(text, query string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return runePrefix(text, 100) + "..."
	}

	terms := queryTerms(query)
	best := sentences[0]
	maxScore := 0
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		score := 0
		for term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > maxScore {
			maxScore = score
			best = sentence
		}
	}
	return strings.TrimSpace(best)
}

func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		term := b.String()
		b.Reset()
		if _, stop := sentenceStopTerms[term]; !stop {
			terms[term] = struct{}{}
		}
	}
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return terms
}

// splitSentences breaks on '.' or '?' followed by whitespace, guarding
// against abbreviations ("e.g. ", "Mr. ") that would otherwise split
// mid-sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '?' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if looksLikeAbbreviation(runes, i) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		start = i + 2
		i++
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func looksLikeAbbreviation(runes []rune, punct int) bool {
	isWord := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	}
	// "e.g." shape: word, dot, word immediately before the punctuation.
	if punct >= 3 && isWord(runes[punct-3]) && runes[punct-2] == '.' && isWord(runes[punct-1]) {
		return true
	}
	// "Mr." shape: capital then lowercase immediately before the punctuation.
	if punct >= 2 && unicode.IsUpper(runes[punct-2]) && unicode.IsLower(runes[punct-1]) {
		return true
	}
	return false
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

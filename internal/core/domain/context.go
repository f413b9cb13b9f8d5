package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Context blocks look like:
//
//	[Ref 1: field-manual.md, Relevance: 0.42]
//	<chunk body>
//
// joined by a blank line. This string is the only channel between retrieval
// and synthesis: the synthesizer re-parses it instead of receiving the ranked
// matches, so FormatContext and ParseContext must stay an exact pair.
const (
	refBlockPrefix    = "[Ref "
	refBlockSeparator = "\n\n"
	relevanceLabel    = "Relevance: "
)

// FormatContext renders ranked matches into a single delimited context
// string. Ranks are 1-based; similarity is rounded to 2 decimals.
func FormatContext(matches []RankedMatch) string {
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for i, m := range matches {
		parts = append(parts, fmt.Sprintf("[Ref %d: %s, %s%.2f]\n%s",
			i+1, m.Chunk.Source, relevanceLabel, m.Similarity, m.Chunk.Text))
	}
	return strings.Join(parts, refBlockSeparator)
}

// CountRefs reports how many Ref blocks a formatted context contains.
func CountRefs(context string) int {
	return strings.Count(context, refBlockPrefix)
}

// ParseContext recovers ordered records from a formatted context string.
// Malformed blocks, including headers without a parsable relevance score,
// are skipped rather than failing the whole parse.
func ParseContext(context string) []ContextRecord {
	if !strings.Contains(context, refBlockPrefix) {
		return nil
	}

	parts := strings.Split(context, refBlockSeparator+refBlockPrefix)
	if strings.HasPrefix(parts[0], refBlockPrefix) {
		parts[0] = strings.TrimPrefix(parts[0], refBlockPrefix)
	}

	records := make([]ContextRecord, 0, len(parts))
	for _, part := range parts {
		meta, body, ok := strings.Cut(part, "]\n")
		if !ok {
			continue
		}
		if !strings.Contains(meta, relevanceLabel) {
			continue
		}

		// Meta is "<rank>: <source>, Relevance: <score>".
		sourcePart, relevancePart, _ := strings.Cut(meta, ", "+relevanceLabel)
		if _, after, ok := strings.Cut(sourcePart, ": "); ok {
			sourcePart = after
		}
		similarity, err := strconv.ParseFloat(strings.TrimSpace(relevancePart), 64)
		if err != nil {
			continue
		}

		records = append(records, ContextRecord{
			Source:     sourcePart,
			Similarity: similarity,
			Body:       body,
		})
	}
	return records
}

package usecase

import "strings"

// QueryExpander widens recall for short or jargon-heavy queries by appending
// domain synonyms after each matching token. Expansion is purely additive:
// original tokens are never removed or reordered.
type QueryExpander struct {
	synonyms map[string]string
}

func NewQueryExpander(synonyms map[string]string) *QueryExpander {
	return &QueryExpander{synonyms: synonyms}
}

func (e *QueryExpander) Expand(query string) string {
	words := strings.Fields(strings.ToLower(query))
	expanded := make([]string, 0, len(words)*2)
	for _, word := range words {
		expanded = append(expanded, word)
		if group, ok := e.synonyms[word]; ok {
			expanded = append(expanded, group)
		}
	}
	return strings.Join(expanded, " ")
}

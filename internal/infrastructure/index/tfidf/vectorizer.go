package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Term weighting follows the classic TF-IDF recipe over unigrams and
// bigrams: sublinear term frequency (1 + log tf), smoothed inverse document
// frequency, L2-normalized vectors. Terms appearing in more than maxDocRatio
// of the corpus carry no discriminative signal and are dropped; rare terms
// are kept since short technical tokens (model names, codenames) are exactly
// what queries look for.
const maxDocRatio = 0.8

type vocabulary struct {
	termIndex map[string]int
	idf       []float64
}

// sparseVector maps vocabulary index to weight. Vectors are L2-normalized
// at construction so cosine similarity reduces to a dot product.
type sparseVector map[int]float64

func buildVocabulary(docs [][]string) vocabulary {
	docFreq := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	maxDF := int(maxDocRatio * float64(len(docs)))
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if len(docs) > 1 && df > maxDF {
			continue
		}
		kept = append(kept, term)
	}
	sort.Strings(kept)

	v := vocabulary{
		termIndex: make(map[string]int, len(kept)),
		idf:       make([]float64, len(kept)),
	}
	n := float64(len(docs))
	for i, term := range kept {
		v.termIndex[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return v
}

// vectorize converts term slices into a normalized sparse TF-IDF vector.
// Terms outside the vocabulary are ignored; an empty intersection yields an
// empty vector, which scores zero against everything.
func (v vocabulary) vectorize(terms []string) sparseVector {
	tf := make(map[int]float64, len(terms))
	for _, term := range terms {
		if idx, ok := v.termIndex[term]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return nil
	}

	vec := make(sparseVector, len(tf))
	var norm float64
	for idx, count := range tf {
		w := (1 + math.Log(count)) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

func dot(a, b sparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		if other, ok := b[idx]; ok {
			sum += w * other
		}
	}
	return sum
}

// analyze tokenizes text into lower-cased alphanumeric unigrams plus
// adjacent-pair bigrams, with stop words removed before pairing.
func analyze(text string) []string {
	unigrams := tokenizeAlphaNum(text)

	filtered := unigrams[:0]
	for _, token := range unigrams {
		if _, stop := stopWords[token]; stop {
			continue
		}
		filtered = append(filtered, token)
	}

	terms := make([]string, 0, len(filtered)*2)
	terms = append(terms, filtered...)
	for i := 0; i+1 < len(filtered); i++ {
		terms = append(terms, filtered[i]+" "+filtered[i+1])
	}
	return terms
}

func tokenizeAlphaNum(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 1 {
			out = append(out, b.String())
		}
		b.Reset()
	}
	if b.Len() > 1 {
		out = append(out, b.String())
	}
	return out
}

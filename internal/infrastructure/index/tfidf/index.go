package tfidf

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

// Index holds the chunk corpus and a derived, rebuildable TF-IDF snapshot.
// Chunks appended after the last Rebuild are invisible to Search until the
// next Rebuild. Searches read an immutable snapshot through an atomic
// pointer, so a rebuild never mutates state a concurrent reader can see.
type Index struct {
	mu     sync.Mutex
	corpus []domain.Chunk

	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	chunks  []domain.Chunk
	vocab   vocabulary
	vectors []sparseVector
}

func New() *Index {
	return &Index{}
}

// Append adds a chunk to the corpus. It does not touch the search snapshot.
func (ix *Index) Append(chunk domain.Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.corpus = append(ix.corpus, chunk)
}

// Replace swaps the whole corpus, used when the knowledge base is reloaded.
// A Rebuild is still required before the new chunks become searchable.
func (ix *Index) Replace(chunks []domain.Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.corpus = append([]domain.Chunk(nil), chunks...)
}

// Rebuild derives term weights for the current corpus and publishes them as
// the new search snapshot.
func (ix *Index) Rebuild() {
	ix.mu.Lock()
	chunks := append([]domain.Chunk(nil), ix.corpus...)
	ix.mu.Unlock()

	if len(chunks) == 0 {
		ix.snap.Store(nil)
		slog.Warn("tfidf_rebuild_empty_corpus")
		return
	}

	docs := make([][]string, len(chunks))
	for i, chunk := range chunks {
		docs[i] = analyze(chunk.Text)
	}
	vocab := buildVocabulary(docs)

	vectors := make([]sparseVector, len(chunks))
	for i, terms := range docs {
		vectors[i] = vocab.vectorize(terms)
	}

	ix.snap.Store(&snapshot{chunks: chunks, vocab: vocab, vectors: vectors})
	slog.Info("tfidf_rebuilt", "chunks", len(chunks), "terms", len(vocab.termIndex))
}

// Size reports how many chunks the current snapshot serves.
func (ix *Index) Size() int {
	snap := ix.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.chunks)
}

// Search scores every indexed chunk against the query, keeps the topK
// highest (ties broken by corpus insertion order), then drops matches below
// minSimilarity. An unbuilt or empty index yields no matches, not an error.
func (ix *Index) Search(query string, topK int, minSimilarity float64) []domain.RankedMatch {
	snap := ix.snap.Load()
	if snap == nil || topK <= 0 {
		return nil
	}

	queryVec := snap.vocab.vectorize(analyze(query))
	if queryVec == nil {
		return nil
	}

	order := make([]int, len(snap.vectors))
	scores := make([]float64, len(snap.vectors))
	for i, vec := range snap.vectors {
		order[i] = i
		scores[i] = dot(queryVec, vec)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	matches := make([]domain.RankedMatch, 0, topK)
	for _, idx := range order[:topK] {
		if scores[idx] < minSimilarity {
			continue
		}
		matches = append(matches, domain.RankedMatch{
			Chunk:      snap.chunks[idx],
			Similarity: scores[idx],
		})
	}
	return matches
}

package usecase

import (
	"fmt"
	"log/slog"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

const (
	// DefaultTopK bounds how many chunks survive a retrieval pass.
	DefaultTopK = 5
	// DefaultMinSimilarity is deliberately low so short acronym-like terms
	// ("M4A1") can still clear it.
	DefaultMinSimilarity = 0.05
)

// RetrieveUseCase runs one retrieval pass: synonym expansion, TF-IDF
// scoring, top-k selection, minimum-similarity filtering.
type RetrieveUseCase struct {
	expander      *QueryExpander
	index         ports.ChunkIndex
	topK          int
	minSimilarity float64
}

func NewRetrieveUseCase(
	expander *QueryExpander,
	index ports.ChunkIndex,
	topK int,
	minSimilarity float64,
) *RetrieveUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &RetrieveUseCase{
		expander:      expander,
		index:         index,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

// Retrieve returns ranked matches for a query. topK zero means the
// configured default; a negative value is a caller bug and fails fast.
// An empty corpus or a query clearing no threshold yields an empty result,
// never an error.
func (uc *RetrieveUseCase) Retrieve(query string, topK int) ([]domain.RankedMatch, error) {
	if topK < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve",
			fmt.Errorf("top_k must not be negative, got %d", topK))
	}
	if topK == 0 {
		topK = uc.topK
	}

	expanded := uc.expander.Expand(query)
	slog.Debug("query_expanded", "query", query, "expanded", expanded)

	matches := uc.index.Search(expanded, topK, uc.minSimilarity)
	slog.Info("retrieval_done",
		"query", query,
		"matches", len(matches),
		"indexed_chunks", uc.index.Size(),
	)
	return matches, nil
}

// Context retrieves and renders the delimited context block consumed by the
// synthesizer.
func (uc *RetrieveUseCase) Context(query string, topK int) (string, error) {
	matches, err := uc.Retrieve(query, topK)
	if err != nil {
		return "", err
	}
	return domain.FormatContext(matches), nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

// CorpusUseCase reloads the chunk corpus from the knowledge base and swaps
// in a freshly built index snapshot. Serving reads keep the old snapshot
// until the swap completes.
type CorpusUseCase struct {
	loader ports.CorpusLoader
	index  ports.ChunkIndex
}

func NewCorpusUseCase(loader ports.CorpusLoader, index ports.ChunkIndex) *CorpusUseCase {
	return &CorpusUseCase{loader: loader, index: index}
}

func (uc *CorpusUseCase) Reload(ctx context.Context) (int, error) {
	chunks, err := uc.loader.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load corpus: %w", err)
	}

	uc.index.Replace(chunks)
	uc.index.Rebuild()

	slog.Info("corpus_reloaded", "chunks", len(chunks))
	return len(chunks), nil
}

package ports

import (
	"context"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

// ChatInput carries one chat request into the core pipeline.
type ChatInput struct {
	Query          string
	ConversationID string
	TopK           int
	UseRetrieval   bool
	History        []domain.HistoryTurn
}

// ChatService is the inbound contract for query answering.
type ChatService interface {
	Chat(ctx context.Context, userID string, input ChatInput) (*domain.Answer, error)
}

// CorpusAdmin is the inbound contract for corpus lifecycle management.
type CorpusAdmin interface {
	Reload(ctx context.Context) (int, error)
}

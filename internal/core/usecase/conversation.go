package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

const (
	defaultConversationList = 50
	titleMaxChars           = 60
)

type ConversationUseCase struct {
	store ports.ConversationStore
}

func NewConversationUseCase(store ports.ConversationStore) *ConversationUseCase {
	return &ConversationUseCase{store: store}
}

func (uc *ConversationUseCase) Create(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}
	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     truncateTitle(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.store.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (uc *ConversationUseCase) List(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = defaultConversationList
	}
	return uc.store.ListByUser(ctx, userID, limit)
}

func (uc *ConversationUseCase) Get(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	return uc.store.Get(ctx, conversationID, userID)
}

func (uc *ConversationUseCase) Rename(ctx context.Context, conversationID, userID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.WrapError(domain.ErrInvalidInput, "rename conversation", fmt.Errorf("title is empty"))
	}
	return uc.store.UpdateTitle(ctx, conversationID, userID, truncateTitle(title))
}

func (uc *ConversationUseCase) Delete(ctx context.Context, conversationID, userID string) error {
	return uc.store.Delete(ctx, conversationID, userID)
}

func (uc *ConversationUseCase) Messages(ctx context.Context, conversationID, userID string, limit int) ([]domain.ConversationMessage, error) {
	// Ownership check before exposing messages.
	if _, err := uc.store.Get(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.store.ListMessages(ctx, conversationID, limit)
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleMaxChars {
		return title
	}
	return string(runes[:titleMaxChars-3]) + "..."
}

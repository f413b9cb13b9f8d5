package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

const defaultHistoryMessages = 10

// ChatUseCase orchestrates one request through the pipeline: retrieval,
// context formatting, synthesis, directive extraction, persistence and
// analytics.
type ChatUseCase struct {
	retriever     *RetrieveUseCase
	synthesizer   *Synthesizer
	detector      ports.IntentDetector
	conversations ports.ConversationStore
	analytics     ports.AnalyticsStore
	historyLimit  int
}

func NewChatUseCase(
	retriever *RetrieveUseCase,
	synthesizer *Synthesizer,
	detector ports.IntentDetector,
	conversations ports.ConversationStore,
	analytics ports.AnalyticsStore,
	historyLimit int,
) *ChatUseCase {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryMessages
	}
	return &ChatUseCase{
		retriever:     retriever,
		synthesizer:   synthesizer,
		detector:      detector,
		conversations: conversations,
		analytics:     analytics,
		historyLimit:  historyLimit,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, userID string, input ports.ChatInput) (*domain.Answer, error) {
	start := time.Now()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("query is empty"))
	}

	history := input.History
	if history == nil && input.ConversationID != "" {
		loaded, err := uc.loadHistory(ctx, input.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		history = loaded
	}

	var formattedContext string
	if input.UseRetrieval {
		matches, err := uc.retriever.Retrieve(query, input.TopK)
		if err != nil {
			return nil, err
		}
		formattedContext = domain.FormatContext(matches)
	}
	sourcesUsed := domain.CountRefs(formattedContext)

	answerText := uc.synthesizer.Synthesize(query, formattedContext, history)

	// The synthesizer may embed the directive as a legacy inline marker;
	// strip it back out into the structured field before the answer is
	// considered final.
	directive, answerText := extractVisualMarker(answerText)
	if directive == nil {
		directive = uc.detector.Detect(query)
	}

	if input.ConversationID != "" {
		if err := uc.persistTurn(ctx, input.ConversationID, query, answerText); err != nil {
			return nil, fmt.Errorf("persist turn: %w", err)
		}
	}

	event := domain.QueryEvent{
		ID:             uuid.NewString(),
		UserID:         userID,
		Query:          query,
		ResponseTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		SourcesUsed:    sourcesUsed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.analytics.LogQuery(ctx, event); err != nil {
		slog.Warn("analytics_log_failed", "error", err)
	}

	return &domain.Answer{
		Text:            answerText,
		SourcesUsed:     sourcesUsed,
		VisualDirective: directive,
	}, nil
}

func (uc *ChatUseCase) loadHistory(ctx context.Context, conversationID string) ([]domain.HistoryTurn, error) {
	messages, err := uc.conversations.ListMessages(ctx, conversationID, uc.historyLimit)
	if err != nil {
		return nil, err
	}
	history := make([]domain.HistoryTurn, 0, len(messages))
	for _, msg := range messages {
		history = append(history, domain.HistoryTurn{Role: msg.Role, Content: msg.Content})
	}
	return history, nil
}

func (uc *ChatUseCase) persistTurn(ctx context.Context, conversationID, query, answer string) error {
	now := time.Now().UTC()
	userMsg := domain.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Content:        query,
		CreatedAt:      now,
	}
	if err := uc.conversations.AppendMessage(ctx, userMsg); err != nil {
		return err
	}
	assistantMsg := domain.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        answer,
		CreatedAt:      now,
	}
	return uc.conversations.AppendMessage(ctx, assistantMsg)
}

// extractVisualMarker pulls a [VISUAL_DIRECTIVE: {...}] marker out of the
// answer text. Everything from the marker onward is transport metadata, not
// part of the human-readable answer.
func extractVisualMarker(text string) (*domain.VisualDirective, string) {
	markerIdx := strings.Index(text, visualMarkerPrefix)
	if markerIdx < 0 {
		return nil, text
	}
	endIdx := strings.LastIndex(text, "]")
	if endIdx <= markerIdx {
		return nil, text
	}

	payload := text[markerIdx+len(visualMarkerPrefix) : endIdx]
	stripped := strings.TrimSpace(text[:markerIdx])

	var directive domain.VisualDirective
	if err := json.Unmarshal([]byte(payload), &directive); err != nil {
		slog.Warn("unparsable_visual_marker", "error", err)
		return nil, stripped
	}
	return &directive, stripped
}

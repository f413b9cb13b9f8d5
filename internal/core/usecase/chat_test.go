package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

type conversationStoreFake struct {
	messages []domain.ConversationMessage
	history  []domain.ConversationMessage
}

func (f *conversationStoreFake) Create(context.Context, *domain.Conversation) error { return nil }
func (f *conversationStoreFake) ListByUser(context.Context, string, int) ([]domain.Conversation, error) {
	return nil, nil
}
func (f *conversationStoreFake) Get(context.Context, string, string) (*domain.Conversation, error) {
	return nil, nil
}
func (f *conversationStoreFake) UpdateTitle(context.Context, string, string, string) error {
	return nil
}
func (f *conversationStoreFake) Delete(context.Context, string, string) error { return nil }
func (f *conversationStoreFake) AppendMessage(_ context.Context, msg domain.ConversationMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}
func (f *conversationStoreFake) ListMessages(context.Context, string, int) ([]domain.ConversationMessage, error) {
	return f.history, nil
}

type analyticsStoreFake struct {
	events []domain.QueryEvent
}

func (f *analyticsStoreFake) LogQuery(_ context.Context, event domain.QueryEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *analyticsStoreFake) DashboardStats(context.Context, string) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func newChatFixture(matches []domain.RankedMatch, directive *domain.VisualDirective) (*ChatUseCase, *conversationStoreFake, *analyticsStoreFake) {
	index := &indexFake{matches: matches}
	detector := &detectorFake{directive: directive}
	retriever := NewRetrieveUseCase(NewQueryExpander(nil), index, 0, 0)
	synthesizer := NewSynthesizer(detector, func(int) int { return 0 })
	conversations := &conversationStoreFake{}
	analytics := &analyticsStoreFake{}
	uc := NewChatUseCase(retriever, synthesizer, detector, conversations, analytics, 0)
	return uc, conversations, analytics
}

func TestChatEmptyQueryRejected(t *testing.T) {
	uc, _, _ := newChatFixture(nil, nil)

	_, err := uc.Chat(context.Background(), "user-1", ports.ChatInput{Query: "   "})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChatEmptyCorpusFallsBack(t *testing.T) {
	uc, _, analytics := newChatFixture(nil, nil)

	answer, err := uc.Chat(context.Background(), "user-1", ports.ChatInput{
		Query:        "supply convoy schedule",
		UseRetrieval: true,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer.SourcesUsed != 0 {
		t.Fatalf("sources used = %d, want 0", answer.SourcesUsed)
	}
	if !strings.Contains(answer.Text, "could not find specific matches") {
		t.Fatalf("expected fallback answer, got %q", answer.Text)
	}
	if len(analytics.events) != 1 || analytics.events[0].SourcesUsed != 0 {
		t.Fatalf("expected one logged event with 0 sources, got %+v", analytics.events)
	}
}

func TestChatStripsVisualMarkerIntoStructuredField(t *testing.T) {
	directive := &domain.VisualDirective{
		Kind:       domain.DirectiveKind3DView,
		EntityID:   "ak47",
		EntityType: "weapon",
		EntityName: "AK-47 Assault Rifle",
	}
	matches := []domain.RankedMatch{
		{Chunk: domain.Chunk{Text: "The AK-47 uses 7.62mm ammunition.", Source: "weapons.md"}, Similarity: 0.9},
	}
	uc, _, _ := newChatFixture(matches, directive)

	answer, err := uc.Chat(context.Background(), "user-1", ports.ChatInput{
		Query:        "show me the ak-47",
		UseRetrieval: true,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if strings.Contains(answer.Text, visualMarkerPrefix) {
		t.Fatalf("marker should be stripped from answer text: %q", answer.Text)
	}
	if answer.VisualDirective == nil || answer.VisualDirective.EntityID != "ak47" {
		t.Fatalf("expected structured directive, got %+v", answer.VisualDirective)
	}
	if answer.SourcesUsed != 1 {
		t.Fatalf("sources used = %d, want 1", answer.SourcesUsed)
	}
}

func TestChatPersistsTurnWhenConversationGiven(t *testing.T) {
	matches := []domain.RankedMatch{
		{Chunk: domain.Chunk{Text: "Radio checks happen hourly.", Source: "signals.md"}, Similarity: 0.7},
	}
	uc, conversations, _ := newChatFixture(matches, nil)

	_, err := uc.Chat(context.Background(), "user-1", ports.ChatInput{
		Query:          "radio check interval",
		ConversationID: "conv-1",
		UseRetrieval:   true,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if len(conversations.messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(conversations.messages))
	}
	if conversations.messages[0].Role != domain.RoleUser || conversations.messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", conversations.messages)
	}
}

func TestChatWithoutRetrievalSkipsIndex(t *testing.T) {
	matches := []domain.RankedMatch{
		{Chunk: domain.Chunk{Text: "should not be used", Source: "x.md"}, Similarity: 0.9},
	}
	uc, _, _ := newChatFixture(matches, nil)

	answer, err := uc.Chat(context.Background(), "user-1", ports.ChatInput{
		Query:        "hello there",
		UseRetrieval: false,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer.SourcesUsed != 0 {
		t.Fatalf("sources used = %d, want 0", answer.SourcesUsed)
	}
	if !strings.Contains(answer.Text, "Greetings. I am VIRAAT") {
		t.Fatalf("expected greeting fallback, got %q", answer.Text)
	}
}

package ports

import (
	"context"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

// ChunkIndex is the lexical retrieval backend: an append-only chunk corpus
// with an explicitly rebuilt, immutable search snapshot.
type ChunkIndex interface {
	Append(chunk domain.Chunk)
	Replace(chunks []domain.Chunk)
	Rebuild()
	Size() int
	Search(query string, topK int, minSimilarity float64) []domain.RankedMatch
}

// IntentDetector scans a raw query for entities worth visualizing.
type IntentDetector interface {
	Detect(query string) *domain.VisualDirective
}

// CorpusLoader reads and chunks the knowledge base from its storage.
type CorpusLoader interface {
	Load(ctx context.Context) ([]domain.Chunk, error)
}

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)
	Get(ctx context.Context, conversationID, userID string) (*domain.Conversation, error)
	UpdateTitle(ctx context.Context, conversationID, userID, title string) error
	Delete(ctx context.Context, conversationID, userID string) error
	AppendMessage(ctx context.Context, msg domain.ConversationMessage) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.ConversationMessage, error)
}

// AnalyticsStore records query events and aggregates dashboard statistics.
type AnalyticsStore interface {
	LogQuery(ctx context.Context, event domain.QueryEvent) error
	DashboardStats(ctx context.Context, userID string) (*domain.DashboardStats, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashed, password string) bool
}

// TokenIssuer mints and validates bearer tokens for API access.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	Parse(token string) (userID string, err error)
}

// MessageQueue carries corpus-reindex notifications between the ingest
// worker and serving processes.
type MessageQueue interface {
	PublishReindex(ctx context.Context, reason string) error
	SubscribeReindex(ctx context.Context, handler func(context.Context, string) error) error
}

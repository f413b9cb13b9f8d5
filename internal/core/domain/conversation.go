package domain

import "time"

// Message roles as stored and as passed to the synthesizer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ConversationMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryTurn is a prior conversation turn handed to the synthesizer as
// plain context. No dialogue planning happens on top of it.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryEvent is one logged chat request for the analytics dashboard.
type QueryEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Query          string    `json:"query"`
	ResponseTimeMS float64   `json:"response_time_ms"`
	SourcesUsed    int       `json:"sources_used"`
	CreatedAt      time.Time `json:"created_at"`
}

type PopularQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type DailyQueryCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardStats struct {
	TotalQueries       int               `json:"total_queries"`
	AverageResponseMS  float64           `json:"average_response_ms"`
	PopularQueries     []PopularQuery    `json:"popular_queries"`
	QueriesLast7Days   []DailyQueryCount `json:"queries_last_7_days"`
	QueriesWithContext int               `json:"queries_with_context"`
	AverageSourcesUsed float64           `json:"average_sources_used"`
}

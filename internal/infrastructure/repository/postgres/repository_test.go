package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

func newMockDB(t *testing.T) (*UserRepository, *ConversationRepository, *AnalyticsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), NewConversationRepository(db), NewAnalyticsRepository(db), mock
}

func TestUserRepositoryGetByUsernameNotFound(t *testing.T) {
	users, _, _, mock := newMockDB(t)

	mock.ExpectQuery("FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "full_name", "role", "created_at"}))

	_, err := users.GetByUsername(context.Background(), "ghost")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	users, _, _, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "full_name", "role", "created_at"}).
		AddRow("u-1", "analyst", "analyst@example.com", "hash", "A. Analyst", "user", time.Now())
	mock.ExpectQuery("FROM users").
		WithArgs("analyst@example.com").
		WillReturnRows(rows)

	user, err := users.GetByEmail(context.Background(), "analyst@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if user.Username != "analyst" {
		t.Fatalf("expected username analyst, got %q", user.Username)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConversationRepositoryGetScopedToUser(t *testing.T) {
	_, convs, _, mock := newMockDB(t)

	mock.ExpectQuery("FROM conversations").
		WithArgs("c-1", "other-user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}))

	_, err := convs.Get(context.Background(), "c-1", "other-user")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConversationRepositoryDeleteReturnsNotFoundWhenNoRows(t *testing.T) {
	_, convs, _, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM conversations").
		WithArgs("missing", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := convs.Delete(context.Background(), "missing", "u-1")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConversationRepositoryAppendMessageTouchesConversation(t *testing.T) {
	_, convs, _, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversation_messages").
		WithArgs("m-1", "c-1", domain.RoleUser, "what is the ak-47", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE conversations").
		WithArgs("c-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := convs.AppendMessage(context.Background(), domain.ConversationMessage{
		ID:             "m-1",
		ConversationID: "c-1",
		Role:           domain.RoleUser,
		Content:        "what is the ak-47",
		CreatedAt:      now,
	})
	if err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConversationRepositoryListMessagesOrdersOldestFirst(t *testing.T) {
	_, convs, _, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "conversation_id", "role", "content", "created_at"}).
		AddRow("m-1", "c-1", domain.RoleUser, "first", time.Now().Add(-time.Minute)).
		AddRow("m-2", "c-1", domain.RoleAssistant, "second", time.Now())
	mock.ExpectQuery("FROM conversation_messages").
		WithArgs("c-1", 10).
		WillReturnRows(rows)

	msgs, err := convs.ListMessages(context.Background(), "c-1", 10)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "first" {
		t.Fatalf("expected oldest message first, got %q", msgs[0].Content)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAnalyticsRepositoryDashboardStats(t *testing.T) {
	_, _, analytics, mock := newMockDB(t)

	mock.ExpectQuery("FROM query_events").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg", "with_sources", "avg_sources"}).
			AddRow(12, 84.5, 9, 3.2))
	mock.ExpectQuery("GROUP BY LOWER").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"query", "cnt"}).
			AddRow("what is the ak-47", 4).
			AddRow("show me the tank", 2))
	mock.ExpectQuery("GROUP BY created_at").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}).
			AddRow("2026-08-30", 5).
			AddRow("2026-08-31", 7))

	stats, err := analytics.DashboardStats(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}
	if stats.TotalQueries != 12 {
		t.Fatalf("expected 12 total queries, got %d", stats.TotalQueries)
	}
	if len(stats.PopularQueries) != 2 || stats.PopularQueries[0].Query != "what is the ak-47" {
		t.Fatalf("unexpected popular queries: %+v", stats.PopularQueries)
	}
	if len(stats.QueriesLast7Days) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(stats.QueriesLast7Days))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

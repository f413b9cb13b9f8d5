package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) LogQuery(ctx context.Context, event domain.QueryEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO query_events (id, user_id, query, response_time_ms, sources_used, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`,
		event.ID, event.UserID, event.Query, event.ResponseTimeMS, event.SourcesUsed, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert query event: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) DashboardStats(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(AVG(response_time_ms), 0),
	COUNT(*) FILTER (WHERE sources_used > 0),
	COALESCE(AVG(sources_used) FILTER (WHERE sources_used > 0), 0)
FROM query_events
WHERE user_id = $1
`, userID)
	err := row.Scan(&stats.TotalQueries, &stats.AverageResponseMS, &stats.QueriesWithContext, &stats.AverageSourcesUsed)
	if err != nil {
		return nil, fmt.Errorf("scan query totals: %w", err)
	}

	popular, err := r.popularQueries(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.PopularQueries = popular

	daily, err := r.dailyCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.QueriesLast7Days = daily

	return stats, nil
}

func (r *AnalyticsRepository) popularQueries(ctx context.Context, userID string) ([]domain.PopularQuery, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT LOWER(query), COUNT(*) AS cnt
FROM query_events
WHERE user_id = $1
GROUP BY LOWER(query)
ORDER BY cnt DESC
LIMIT 5
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list popular queries: %w", err)
	}
	defer rows.Close()

	var out []domain.PopularQuery
	for rows.Next() {
		var pq domain.PopularQuery
		if err := rows.Scan(&pq.Query, &pq.Count); err != nil {
			return nil, fmt.Errorf("scan popular query: %w", err)
		}
		out = append(out, pq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular queries: %w", err)
	}
	return out, nil
}

func (r *AnalyticsRepository) dailyCounts(ctx context.Context, userID string) ([]domain.DailyQueryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(*)
FROM query_events
WHERE user_id = $1 AND created_at >= NOW() - INTERVAL '7 days'
GROUP BY created_at::date
ORDER BY created_at::date
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list daily counts: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyQueryCount
	for rows.Next() {
		var dc domain.DailyQueryCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily counts: %w", err)
	}
	return out, nil
}

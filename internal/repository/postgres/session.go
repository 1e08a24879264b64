package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
	"tabkeep/internal/domain/repositories"
)

// PostgresSessionRepository implements the SessionRepository interface
type PostgresSessionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSessionRepository creates a new PostgresSessionRepository
func NewSessionRepository(config *RepositoryConfig) repositories.SessionRepository {
	return &PostgresSessionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new session, filling in its ID and CreatedAt.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *searchModels.SearchSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = searchModels.SessionPending
	}
	session.CreatedAt = time.Now().UTC()

	// Anonymous sessions store NULL, not the empty string.
	var userID *string
	if session.UserID != "" {
		userID = &session.UserID
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, query, selected_platforms, status, total_results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.SearchSessions)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		session.ID,
		userID,
		session.Query,
		searchModels.PlatformStrings(session.SelectedPlatforms),
		session.Status,
		session.TotalResults,
		session.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("session %s already exists", session.ID)
		}
		return fmt.Errorf("create search session: %w", err)
	}
	return nil
}

// SetStatus moves a session to a non-terminal status.
func (r *PostgresSessionRepository) SetStatus(ctx context.Context, id string, status searchModels.SessionStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2 WHERE id = $1`, r.tables.SearchSessions)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	return nil
}

// Complete marks a session completed with its final tallies.
func (r *PostgresSessionRepository) Complete(ctx context.Context, id string, platformsSearched []searchModels.Platform, totalResults int, aiSummary string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, platforms_searched = $3, total_results = $4, ai_summary = $5, completed_at = $6
		WHERE id = $1
	`, r.tables.SearchSessions)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		id,
		searchModels.SessionCompleted,
		searchModels.PlatformStrings(platformsSearched),
		totalResults,
		aiSummary,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	return nil
}

// Fail marks a session failed.
func (r *PostgresSessionRepository) Fail(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = $2, completed_at = $3 WHERE id = $1
	`, r.tables.SearchSessions)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, searchModels.SessionFailed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("fail session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	return nil
}

// Get retrieves one session by ID.
func (r *PostgresSessionRepository) Get(ctx context.Context, id string) (*searchModels.SearchSession, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, query, selected_platforms, status, platforms_searched,
		       total_results, ai_summary, created_at, completed_at
		FROM %s
		WHERE id = $1
	`, r.tables.SearchSessions)

	executor := GetExecutor(ctx, r.pool)
	session, err := scanSession(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// List retrieves the most recent sessions, newest first.
func (r *PostgresSessionRepository) List(ctx context.Context, limit int) ([]searchModels.SearchSession, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, query, selected_platforms, status, platforms_searched,
		       total_results, ai_summary, created_at, completed_at
		FROM %s
		ORDER BY created_at DESC
		LIMIT $1
	`, r.tables.SearchSessions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []searchModels.SearchSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// scanSession maps one row into a SearchSession. Platform arrays are stored
// as text[] and parsed back through the domain parser.
func scanSession(row pgx.Row) (*searchModels.SearchSession, error) {
	var (
		session   searchModels.SearchSession
		userID    *string
		selected  []string
		searched  []string
		aiSummary *string
	)
	err := row.Scan(
		&session.ID,
		&userID,
		&session.Query,
		&selected,
		&session.Status,
		&searched,
		&session.TotalResults,
		&aiSummary,
		&session.CreatedAt,
		&session.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if session.SelectedPlatforms, err = searchModels.ParsePlatforms(selected); err != nil {
		return nil, fmt.Errorf("parse selected platforms: %w", err)
	}
	if len(searched) > 0 {
		if session.PlatformsSearched, err = searchModels.ParsePlatforms(searched); err != nil {
			return nil, fmt.Errorf("parse searched platforms: %w", err)
		}
	}
	if userID != nil {
		session.UserID = *userID
	}
	if aiSummary != nil {
		session.AISummary = *aiSummary
	}
	return &session, nil
}

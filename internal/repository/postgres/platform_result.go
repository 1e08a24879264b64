package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	searchModels "tabkeep/internal/domain/models/search"
	"tabkeep/internal/domain/repositories"
)

// PostgresPlatformResultRepository implements the PlatformResultRepository
// interface. Normalized results are stored as one JSONB document per adapter
// invocation; they are read back for session inspection, not re-ranked.
type PostgresPlatformResultRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPlatformResultRepository creates a new PostgresPlatformResultRepository
func NewPlatformResultRepository(config *RepositoryConfig) repositories.PlatformResultRepository {
	return &PostgresPlatformResultRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Save stores one adapter invocation outcome for a session.
func (r *PostgresPlatformResultRepository) Save(ctx context.Context, sessionID string, result *searchModels.PlatformResult) error {
	payload, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("marshal platform results: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, platform, status, error_message, duration_ms, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.PlatformResults)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		uuid.New().String(),
		sessionID,
		result.Platform,
		result.Status,
		result.ErrorMessage,
		result.ElapsedMs,
		payload,
		time.Now().UTC(),
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("session %s does not exist", sessionID)
		}
		return fmt.Errorf("save platform result: %w", err)
	}
	return nil
}

// ListBySession retrieves every stored outcome for a session, oldest first.
func (r *PostgresPlatformResultRepository) ListBySession(ctx context.Context, sessionID string) ([]searchModels.PlatformResult, error) {
	query := fmt.Sprintf(`
		SELECT platform, status, error_message, duration_ms, results
		FROM %s
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, r.tables.PlatformResults)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list platform results: %w", err)
	}
	defer rows.Close()

	var results []searchModels.PlatformResult
	for rows.Next() {
		var (
			pr      searchModels.PlatformResult
			payload []byte
		)
		if err := rows.Scan(&pr.Platform, &pr.Status, &pr.ErrorMessage, &pr.ElapsedMs, &payload); err != nil {
			return nil, fmt.Errorf("scan platform result: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &pr.Results); err != nil {
				return nil, fmt.Errorf("decode platform results: %w", err)
			}
		}
		results = append(results, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platform results: %w", err)
	}
	return results, nil
}

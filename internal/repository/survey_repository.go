package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// SurveyRepository stores survey definitions as JSONB documents.
type SurveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository creates a new SurveyRepository.
func NewSurveyRepository(pool *pgxpool.Pool) *SurveyRepository {
	return &SurveyRepository{pool: pool}
}

// GetByID loads and decodes a survey definition.
func (r *SurveyRepository) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	var s model.Survey
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT definition, created_at, updated_at FROM surveys WHERE id = $1`, id,
	).Scan(&raw, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	created, updated := s.CreatedAt, s.UpdatedAt
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode survey %q: %w", id, err)
	}
	s.ID, s.CreatedAt, s.UpdatedAt = id, created, updated
	return &s, nil
}

// Upsert creates or replaces a survey definition.
func (r *SurveyRepository) Upsert(ctx context.Context, s *model.Survey) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode survey %q: %w", s.ID, err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO surveys (id, title, definition)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title, definition = EXCLUDED.definition, updated_at = NOW()
		 RETURNING created_at, updated_at`,
		s.ID, s.Title, raw,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// ListIDs returns every stored survey id.
func (r *SurveyRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM surveys ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

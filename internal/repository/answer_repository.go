package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// AnswerRepository stores submitted answers.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// PutAnswer upserts the answer keyed by (survey_id, id) and clears the
// session's drafts in the same transaction.
func (r *AnswerRepository) PutAnswer(ctx context.Context, a *model.Answer) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	final := a.Final
	if final == nil {
		final = model.FinalInfo{}
	}
	finalJSON, err := json.Marshal(final)
	if err != nil {
		return fmt.Errorf("encode final: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO answers (survey_id, id, answers, result_id, final, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (survey_id, id) DO UPDATE
			 SET answers = EXCLUDED.answers,
			     result_id = EXCLUDED.result_id,
			     final = EXCLUDED.final,
			     updated_at = EXCLUDED.updated_at`,
			a.SurveyID, a.ID, answers, a.ResultID, finalJSON, a.CreatedAt, a.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert answer: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM answer_drafts WHERE session_id = $1`, a.ID); err != nil {
			return fmt.Errorf("clear drafts: %w", err)
		}
		return nil
	})
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nevenhsu/survey-web-sub001/internal/config"
	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// ErrQueueEmpty is returned by the draft queue when nothing arrived in time.
var ErrQueueEmpty = errors.New("queue empty")

// DraftRepository persists in-progress answers to answer_drafts. Drafts of a
// session that has already been submitted are ignored.
type DraftRepository struct {
	pool *pgxpool.Pool
}

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

// BulkUpsert writes a batch with one UNNEST statement. The batch must not
// hold two drafts for the same (session, quiz).
func (r *DraftRepository) BulkUpsert(ctx context.Context, drafts []model.AnswerDraft) error {
	n := len(drafts)
	if n == 0 {
		return nil
	}

	sessions := make([]string, 0, n)
	surveys := make([]string, 0, n)
	quizzes := make([]string, 0, n)
	values := make([]string, 0, n)
	updatedAts := make([]time.Time, 0, n)

	for _, d := range drafts {
		raw, err := json.Marshal(d.Value)
		if err != nil {
			return fmt.Errorf("encode draft %s/%s: %w", d.SessionID, d.QuizID, err)
		}
		sessions = append(sessions, d.SessionID)
		surveys = append(surveys, d.SurveyID)
		quizzes = append(quizzes, d.QuizID)
		values = append(values, string(raw))
		updatedAts = append(updatedAts, d.UpdatedAt)
	}

	query := `
		INSERT INTO answer_drafts (session_id, survey_id, quiz_id, value, updated_at)
		SELECT u.session_id, u.survey_id, u.quiz_id, u.value::jsonb, u.updated_at
		FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::timestamptz[]
		) AS u (session_id, survey_id, quiz_id, value, updated_at)
		WHERE NOT EXISTS (SELECT 1 FROM answers a WHERE a.id = u.session_id)
		ON CONFLICT (session_id, quiz_id) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
		WHERE answer_drafts.updated_at <= EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query, sessions, surveys, quizzes, values, updatedAts)
	return err
}

// Upsert writes a single draft.
func (r *DraftRepository) Upsert(ctx context.Context, d model.AnswerDraft) error {
	raw, err := json.Marshal(d.Value)
	if err != nil {
		return fmt.Errorf("encode draft %s/%s: %w", d.SessionID, d.QuizID, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO answer_drafts (session_id, survey_id, quiz_id, value, updated_at)
		 SELECT $1, $2, $3, $4::jsonb, $5
		 WHERE NOT EXISTS (SELECT 1 FROM answers WHERE id = $1)
		 ON CONFLICT (session_id, quiz_id) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		 WHERE answer_drafts.updated_at <= EXCLUDED.updated_at`,
		d.SessionID, d.SurveyID, d.QuizID, string(raw), d.UpdatedAt,
	)
	return err
}

// DraftQueue is the Redis list between SessionService and the draft worker.
type DraftQueue struct {
	rdb *redis.Client
}

// NewDraftQueue creates a new DraftQueue.
func NewDraftQueue(rdb *redis.Client) *DraftQueue {
	return &DraftQueue{rdb: rdb}
}

// Pop blocks up to timeout for the next draft. It returns ErrQueueEmpty on timeout.
func (q *DraftQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	item, err := q.rdb.BLPop(ctx, timeout, config.WorkerKey.PersistDraftsQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	if len(item) < 2 {
		return nil, ErrQueueEmpty
	}
	return []byte(item[1]), nil
}

// TryPop returns the next draft without blocking.
func (q *DraftQueue) TryPop(ctx context.Context) ([]byte, error) {
	raw, err := q.rdb.LPop(ctx, config.WorkerKey.PersistDraftsQueue).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	return raw, nil
}

// Push appends a raw draft, used to requeue after a failed write.
func (q *DraftQueue) Push(ctx context.Context, raw []byte) error {
	return q.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, raw).Err()
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nevenhsu/survey-web-sub001/internal/config"
	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/quizflow"
)

const maxUpdateAttempts = 5

// SessionStore keeps answer-session snapshots in Redis and feeds the draft queue.
type SessionStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewSessionStore creates a SessionStore. Every write refreshes the snapshot TTL.
func NewSessionStore(rdb *redis.Client, ttl, lockTTL time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// Create stores a brand-new snapshot. It fails if the id is already taken.
func (s *SessionStore) Create(ctx context.Context, st *quizflow.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, config.CacheKey.AnswerSessionKey(st.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %q: %w", st.ID, ErrConflict)
	}
	return nil
}

// Load returns ErrNotFound for unknown or expired sessions.
func (s *SessionStore) Load(ctx context.Context, id string) (*quizflow.State, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.AnswerSessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeState(data)
}

// Update applies fn to the stored snapshot under WATCH and writes the result
// back atomically. fn may run more than once when the key changes concurrently.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*quizflow.State) (*quizflow.State, error)) (*quizflow.State, error) {
	key := config.CacheKey.AnswerSessionKey(id)
	var out *quizflow.State

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		current, err := decodeState(data)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("session %q: %w", id, ErrConflict)
}

// AcquireSubmitLock reports whether this caller now owns the session's submission.
func (s *SessionStore) AcquireSubmitLock(ctx context.Context, id string) (bool, error) {
	return s.rdb.SetNX(ctx, config.CacheKey.AnswerSubmitLockKey(id), 1, s.lockTTL).Result()
}

func (s *SessionStore) ReleaseSubmitLock(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, config.CacheKey.AnswerSubmitLockKey(id)).Err()
}

// EnqueueDraft hands an in-progress answer to the draft worker.
func (s *SessionStore) EnqueueDraft(ctx context.Context, d model.AnswerDraft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, raw).Err()
}

func decodeState(data []byte) (*quizflow.State, error) {
	var st quizflow.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &st, nil
}

// DraftQueueLen reports how many drafts are waiting for the draft worker.
func (s *SessionStore) DraftQueueLen(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, config.WorkerKey.PersistDraftsQueue).Result()
}

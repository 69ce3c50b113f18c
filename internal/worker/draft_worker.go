package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
)

const (
	DraftBatchTimeout = 2 * time.Second
	DraftPollTimeout  = 1 * time.Second
)

// DraftQueue is the list drafts arrive on. *repository.DraftQueue implements it.
type DraftQueue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	TryPop(ctx context.Context) ([]byte, error)
	Push(ctx context.Context, raw []byte) error
}

// DraftStore is the durable draft table. *repository.DraftRepository implements it.
type DraftStore interface {
	BulkUpsert(ctx context.Context, drafts []model.AnswerDraft) error
	Upsert(ctx context.Context, d model.AnswerDraft) error
}

// DraftWorker consumes persist_drafts_queue and upserts in-progress answers
// to PostgreSQL in batches.
type DraftWorker struct {
	queue     DraftQueue
	store     DraftStore
	batchSize int
	log       zerolog.Logger
}

// NewDraftWorker creates a new DraftWorker.
func NewDraftWorker(queue DraftQueue, store DraftStore, batchSize int, log zerolog.Logger) *DraftWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &DraftWorker{
		queue:     queue,
		store:     store,
		batchSize: batchSize,
		log:       log.With().Str("component", "draft_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it holds and drains
// the queue. Call in a goroutine.
func (w *DraftWorker) Start(ctx context.Context) {
	w.log.Info().Int("batch_size", w.batchSize).Msg("DraftWorker started")

	batch := make([]model.AnswerDraft, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= DraftBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("DraftWorker stopped")
			return

		default:
			raw, err := w.queue.Pop(ctx, DraftPollTimeout)
			if err != nil {
				if !errors.Is(err, repository.ErrQueueEmpty) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			d, ok := w.decode(raw)
			if !ok {
				continue
			}
			batch = append(batch, d)
		}
	}
}

func (w *DraftWorker) decode(raw []byte) (model.AnswerDraft, bool) {
	var d model.AnswerDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return d, false
	}
	if d.SessionID == "" || d.QuizID == "" {
		w.log.Error().Msg("Draft without session or quiz id, discarding")
		return d, false
	}
	return d, true
}

// ----------------------------------------------------------------
// Batch upsert wrapper
// ----------------------------------------------------------------

func (w *DraftWorker) flushSafe(ctx context.Context, batch []model.AnswerDraft) {
	if len(batch) == 0 {
		return
	}

	drafts := latestOnly(batch)
	if err := w.store.BulkUpsert(ctx, drafts); err != nil {
		w.log.Warn().Err(err).Int("count", len(drafts)).Msg("Bulk draft upsert failed, using fallback")

		for _, d := range drafts {
			if err := w.store.Upsert(ctx, d); err != nil {
				w.log.Error().Err(err).
					Str("session_id", d.SessionID).
					Str("quiz_id", d.QuizID).
					Msg("Draft upsert failed, requeueing")
				w.requeue(ctx, d)
			}
		}
		return
	}

	w.log.Debug().Int("count", len(drafts)).Msg("Drafts persisted")
}

// latestOnly keeps the newest draft per (session, quiz). One statement may
// not update the same row twice.
func latestOnly(batch []model.AnswerDraft) []model.AnswerDraft {
	type key struct{ session, quiz string }
	at := make(map[key]int, len(batch))
	out := make([]model.AnswerDraft, 0, len(batch))

	for _, d := range batch {
		k := key{d.SessionID, d.QuizID}
		if i, ok := at[k]; ok {
			if !d.UpdatedAt.Before(out[i].UpdatedAt) {
				out[i] = d
			}
			continue
		}
		at[k] = len(out)
		out = append(out, d)
	}
	return out
}

// drain persists everything still queued before shutdown.
func (w *DraftWorker) drain(ctx context.Context) {
	drained := 0
	batch := make([]model.AnswerDraft, 0, w.batchSize)

	for {
		raw, err := w.queue.TryPop(ctx)
		if err != nil {
			if !errors.Is(err, repository.ErrQueueEmpty) {
				w.log.Error().Err(err).Msg("Drain pop error")
			}
			break
		}
		if d, ok := w.decode(raw); ok {
			batch = append(batch, d)
		}
		if len(batch) >= w.batchSize {
			if !w.flushDrain(ctx, batch) {
				batch = batch[:0]
				break
			}
			drained += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 && w.flushDrain(ctx, batch) {
		drained += len(batch)
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

// flushDrain writes one drain batch and reports whether draining should go on.
// On failure the batch goes back to the queue for the next start.
func (w *DraftWorker) flushDrain(ctx context.Context, batch []model.AnswerDraft) bool {
	drafts := latestOnly(batch)
	if err := w.store.BulkUpsert(ctx, drafts); err != nil {
		w.log.Error().Err(err).Msg("Drain persist error")
		for _, d := range drafts {
			w.requeue(ctx, d)
		}
		return false
	}
	return true
}

// requeue puts d back on the queue. A draft that cannot be encoded is dropped.
func (w *DraftWorker) requeue(ctx context.Context, d model.AnswerDraft) {
	raw, err := json.Marshal(d)
	if err != nil {
		w.log.Error().Err(err).
			Str("session_id", d.SessionID).
			Str("quiz_id", d.QuizID).
			Msg("Draft encode failed, draft lost")
		return
	}
	if err := w.queue.Push(ctx, raw); err != nil {
		w.log.Error().Err(err).Str("session_id", d.SessionID).Msg("Requeue failed, draft lost")
	}
}

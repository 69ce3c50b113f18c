package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/quizflow"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
)

// SessionStore persists answer-session snapshots between requests.
type SessionStore interface {
	Create(ctx context.Context, st *quizflow.State) error
	Load(ctx context.Context, id string) (*quizflow.State, error)
	Update(ctx context.Context, id string, fn func(*quizflow.State) (*quizflow.State, error)) (*quizflow.State, error)
	AcquireSubmitLock(ctx context.Context, id string) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
	EnqueueDraft(ctx context.Context, d model.AnswerDraft) error
}

// SurveyIndexer resolves a survey id to its compiled form.
type SurveyIndexer interface {
	Index(ctx context.Context, id string) (*quizflow.Index, error)
}

// SessionView is what a respondent's client sees of its session.
type SessionView struct {
	ID          string                       `json:"id"`
	SurveyID    string                       `json:"surveyId"`
	Step        quizflow.Stage               `json:"step"`
	CurrentQuiz model.Quiz                   `json:"currentQuiz,omitempty"`
	LastQuiz    bool                         `json:"lastQuiz"`
	Answers     map[string]model.AnswerValue `json:"answers"`
	Round       *RoundView                   `json:"round,omitempty"`
	Result      *model.Result                `json:"result,omitempty"`
	Final       model.FinalInfo              `json:"final,omitempty"`
}

// RoundView is the pending oneInTwo comparison.
type RoundView struct {
	QuizID   string         `json:"quizId"`
	Answered int            `json:"answered"`
	Total    int            `json:"total"`
	Choices  []model.Choice `json:"choices,omitempty"`
	Done     bool           `json:"done"`
}

// SessionService drives answer sessions across stateless requests: each
// operation restores the stored snapshot, applies one transition and saves it.
type SessionService struct {
	surveys SurveyIndexer
	store   SessionStore
	writer  quizflow.AnswerWriter
	log     zerolog.Logger
	now     func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(surveys SurveyIndexer, store SessionStore, writer quizflow.AnswerWriter, log zerolog.Logger) *SessionService {
	return &SessionService{
		surveys: surveys,
		store:   store,
		writer:  writer,
		log:     log.With().Str("component", "session_service").Logger(),
		now:     time.Now,
	}
}

// Start opens a new session on the survey's first quiz.
func (s *SessionService) Start(ctx context.Context, surveyID string) (*SessionView, error) {
	idx, err := s.surveys.Index(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	sess, err := quizflow.NewSession(idx, s.options()...)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	st := sess.State()
	if err := s.store.Create(ctx, &st); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID()).
		Str("survey_id", surveyID).
		Msg("Answer session started")
	return buildView(sess), nil
}

// Get returns the session as stored.
func (s *SessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.restore(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildView(sess), nil
}

// Answer records the answer to quizID and queues it as a draft.
func (s *SessionService) Answer(ctx context.Context, id, quizID string, value model.AnswerValue) (*SessionView, error) {
	view, err := s.mutate(ctx, id, func(sess *quizflow.Session) error {
		return sess.Answer(quizID, value)
	})
	if err != nil {
		return nil, err
	}

	draft := model.AnswerDraft{
		SessionID: id,
		SurveyID:  view.SurveyID,
		QuizID:    quizID,
		Value:     view.Answers[quizID],
		UpdatedAt: s.now(),
	}
	if err := s.store.EnqueueDraft(ctx, draft); err != nil {
		// The snapshot already holds the answer; only the durable copy lags.
		s.log.Warn().Err(err).Str("session_id", id).Str("quiz_id", quizID).Msg("Failed to queue draft")
	}
	return view, nil
}

// Advance moves to the next quiz, or to the result once the survey is done.
func (s *SessionService) Advance(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, id, func(sess *quizflow.Session) error {
		return sess.Advance()
	})
}

// Round returns the pending oneInTwo round of the current quiz.
func (s *SessionService) Round(ctx context.Context, id string) (*RoundView, error) {
	sess, err := s.restore(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := sess.Round(); err != nil {
		return nil, err
	}
	return buildRound(sess), nil
}

// Pick answers the current oneInTwo round.
func (s *SessionService) Pick(ctx context.Context, id, choiceID string) (*SessionView, error) {
	return s.mutate(ctx, id, func(sess *quizflow.Session) error {
		_, err := sess.Pick(choiceID)
		return err
	})
}

// CompleteResult leaves the result page for the final page.
func (s *SessionService) CompleteResult(ctx context.Context, id string, final model.FinalInfo) (*SessionView, error) {
	return s.mutate(ctx, id, func(sess *quizflow.Session) error {
		return sess.CompleteResult(final)
	})
}

// Submit hands the finished answer to storage. Concurrent submits of one
// session across instances are refused with quizflow.ErrSubmitInProgress;
// a submit after success returns the submitted session unchanged.
func (s *SessionService) Submit(ctx context.Context, id string) (*SessionView, error) {
	acquired, err := s.store.AcquireSubmitLock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		return nil, quizflow.ErrSubmitInProgress
	}
	defer func() {
		if err := s.store.ReleaseSubmitLock(context.WithoutCancel(ctx), id); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("Failed to release submit lock")
		}
	}()

	sess, err := s.restore(ctx, id, quizflow.WithWriter(s.writer))
	if err != nil {
		return nil, err
	}
	if sess.Stage() == quizflow.StageSubmitted {
		return buildView(sess), nil
	}
	if err := sess.Submit(ctx); err != nil {
		return nil, err
	}

	st := sess.State()
	if _, err := s.store.Update(ctx, id, func(*quizflow.State) (*quizflow.State, error) { return &st, nil }); err != nil {
		// The answer is stored; a stale snapshot only lets the client submit
		// again, which upserts the same row.
		s.log.Error().Err(err).Str("session_id", id).Msg("Failed to save submitted session")
	}
	return buildView(sess), nil
}

// ─── Internals ───────────────────────────────────────────────────────

func (s *SessionService) options(extra ...quizflow.Option) []quizflow.Option {
	return append([]quizflow.Option{
		quizflow.WithLogger(s.log),
		quizflow.WithClock(s.now),
	}, extra...)
}

func (s *SessionService) restore(ctx context.Context, id string, extra ...quizflow.Option) (*quizflow.Session, error) {
	st, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.restoreState(ctx, st, extra...)
}

func (s *SessionService) restoreState(ctx context.Context, st *quizflow.State, extra ...quizflow.Option) (*quizflow.Session, error) {
	idx, err := s.surveys.Index(ctx, st.SurveyID)
	if err != nil {
		return nil, err
	}
	sess, err := quizflow.Restore(idx, *st, s.options(extra...)...)
	if err != nil {
		return nil, fmt.Errorf("restore session %q: %w", st.ID, err)
	}
	return sess, nil
}

// mutate applies op to the stored session and saves the result atomically.
func (s *SessionService) mutate(ctx context.Context, id string, op func(*quizflow.Session) error) (*SessionView, error) {
	var view *SessionView
	_, err := s.store.Update(ctx, id, func(st *quizflow.State) (*quizflow.State, error) {
		sess, err := s.restoreState(ctx, st)
		if err != nil {
			return nil, err
		}
		if err := op(sess); err != nil {
			return nil, err
		}
		next := sess.State()
		view = buildView(sess)
		return &next, nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return view, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func buildView(sess *quizflow.Session) *SessionView {
	st := sess.State()
	survey := sess.Index().Survey()

	view := &SessionView{
		ID:       st.ID,
		SurveyID: st.SurveyID,
		Step:     st.Stage,
		LastQuiz: st.LastQuiz,
		Answers:  st.Answers,
		Final:    st.Final,
	}
	if st.Stage == quizflow.StageQuiz {
		if q, ok := sess.Index().Quiz(st.CurrentQuizID); ok {
			view.CurrentQuiz = q
		}
		view.Round = buildRound(sess)
	}
	if st.ResultID != "" {
		if r, ok := survey.Results.List[st.ResultID]; ok {
			r.ID = st.ResultID
			view.Result = &r
		}
	}
	return view
}

func buildRound(sess *quizflow.Session) *RoundView {
	answered, total, ok := sess.RoundProgress()
	if !ok {
		return nil
	}
	rv := &RoundView{
		QuizID:   sess.CurrentQuizID(),
		Answered: answered,
		Total:    total,
		Done:     answered >= total,
	}
	if round, pending, err := sess.Round(); err == nil && pending {
		rv.Choices = []model.Choice{round[0], round[1]}
	}
	return rv
}

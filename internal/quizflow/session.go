package quizflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// Stage enumerates the answer-session states.
type Stage string

const (
	StageQuiz      Stage = "quiz"
	StageResult    Stage = "result"
	StageFinal     Stage = "final"
	StageSubmitted Stage = "submitted"
)

var (
	ErrNoWriter        = errors.New("no answer writer configured")
	ErrSurveyMismatch  = errors.New("state belongs to another survey")
	ErrValueOutOfRange = errors.New("value is outside the slider range")
)

// AnswerWriter persists a finished answer. It is the external "put answer" call.
type AnswerWriter interface {
	PutAnswer(ctx context.Context, answer *model.Answer) error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log.With().Str("component", "answer_session").Logger() }
}

// WithShuffler sets the random source used for oneInTwo rounds.
func WithShuffler(rng Shuffler) Option { return func(s *Session) { s.rng = rng } }

// WithWriter sets the answer storage used by Submit.
func WithWriter(w AnswerWriter) Option { return func(s *Session) { s.writer = w } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithID sets the session (and answer) id instead of a random UUID.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

type pairRun struct {
	rounds  []Round
	next    int
	dropped int
}

// Session is one respondent's run through a survey. Each respondent owns its
// own Session; the Index it reads from may be shared.
type Session struct {
	mu     sync.Mutex
	idx    *Index
	log    zerolog.Logger
	rng    Shuffler
	writer AnswerWriter
	now    func() time.Time

	id            string
	answers       map[string]model.AnswerValue
	currentQuizID string
	stage         Stage
	resultID      string
	final         model.FinalInfo
	lastQuiz      bool
	pairs         map[string]*pairRun
	uploading     bool
	createdAt     time.Time
}

func newSession(idx *Index, opts []Option) *Session {
	s := &Session{
		idx:     idx,
		log:     zerolog.Nop(),
		now:     time.Now,
		answers: make(map[string]model.AnswerValue),
		final:   make(model.FinalInfo),
		pairs:   make(map[string]*pairRun),
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = NewShuffler(0)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s
}

// NewSession starts a run at the survey's first quiz, or directly at the
// result when the survey has no quizzes.
func NewSession(idx *Index, opts ...Option) (*Session, error) {
	s := newSession(idx, opts)
	s.createdAt = s.now()

	step, err := Next(idx, "", nil)
	if err != nil {
		return nil, err
	}
	if step.Done {
		if err := s.enterResult(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.enterQuiz(step.QuizID); err != nil {
		return nil, err
	}
	return s, nil
}

// ─── Accessors ───────────────────────────────────────────────────────

func (s *Session) ID() string { return s.id }

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) CurrentQuizID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuizID
}

func (s *Session) ResultID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultID
}

// LastQuiz reports whether the pointer is on the final quiz of the survey.
func (s *Session) LastQuiz() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuiz
}

// Uploading reports whether a submission is in flight.
func (s *Session) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() map[string]model.AnswerValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAnswers(s.answers)
}

// Profile folds the current answers into a tag profile.
func (s *Session) Profile() TagProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Fold(s.idx, s.answers)
}

// DroppedChoices counts oneInTwo choices left out of every round so far.
func (s *Session) DroppedChoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, run := range s.pairs {
		n += run.dropped
	}
	return n
}

// ─── Transitions ─────────────────────────────────────────────────────

// Answer records (or replaces) the answer to quizID. It does not move the pointer.
func (s *Session) Answer(quizID string, value model.AnswerValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageQuiz {
		return fmt.Errorf("answer in %s: %w", s.stage, ErrInvalidStep)
	}
	quiz, ok := s.idx.Quiz(quizID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrQuizNotFound, quizID)
	}
	if err := validateAnswer(quiz, value); err != nil {
		return fmt.Errorf("quiz %q: %w", quizID, err)
	}

	value.QuizID = quizID
	value.Values = cloneValues(value.Values)
	s.answers[quizID] = value
	return nil
}

// Round returns the pending pair of the current oneInTwo quiz. ok is false
// once every round has been answered.
func (s *Session) Round() (Round, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.currentRun()
	if err != nil {
		return Round{}, false, err
	}
	if run.next >= len(run.rounds) {
		return Round{}, false, nil
	}
	return run.rounds[run.next], true, nil
}

// RoundProgress reports how many rounds of the current oneInTwo quiz are
// answered out of how many. ok is false when the current quiz has no rounds.
func (s *Session) RoundProgress() (answered, total int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.currentRun()
	if err != nil {
		return 0, 0, false
	}
	return run.next, len(run.rounds), true
}

// Index returns the compiled survey the session runs against.
func (s *Session) Index() *Index { return s.idx }

// Pick answers the current round of the current oneInTwo quiz with choiceID.
// done reports that every round has now been answered.
func (s *Session) Pick(choiceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.currentRun()
	if err != nil {
		return false, err
	}
	if run.next >= len(run.rounds) {
		return true, ErrRoundsExhausted
	}

	round := run.rounds[run.next]
	if round[0].ID != choiceID && round[1].ID != choiceID {
		return false, fmt.Errorf("%w: %q", ErrNotInRound, choiceID)
	}

	av := s.answers[s.currentQuizID]
	av.QuizID = s.currentQuizID
	av.Values = append(av.Values, choiceID)
	s.answers[s.currentQuizID] = av
	run.next++

	return run.next >= len(run.rounds), nil
}

// Advance asks the sequencer for the next quiz. When the survey is done the
// session moves to the result stage with the resolved result id.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageQuiz {
		return fmt.Errorf("advance in %s: %w", s.stage, ErrInvalidStep)
	}

	quiz, ok := s.idx.Quiz(s.currentQuizID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrQuizNotFound, s.currentQuizID)
	}
	if quiz.IsRequired() && !s.answered(quiz) {
		return fmt.Errorf("quiz %q: %w", s.currentQuizID, ErrAnswerRequired)
	}

	var current *model.AnswerValue
	if av, ok := s.answers[s.currentQuizID]; ok {
		current = &av
	}

	step, err := Next(s.idx, s.currentQuizID, current)
	if err != nil {
		return err
	}
	if step.Done {
		return s.enterResult()
	}
	return s.enterQuiz(step.QuizID)
}

// CompleteResult moves from the result page to the final page, seeding the
// final info with the supplied fields.
func (s *Session) CompleteResult(final model.FinalInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageResult {
		return fmt.Errorf("complete result in %s: %w", s.stage, ErrInvalidStep)
	}
	for k, v := range final {
		s.final[k] = v
	}
	s.stage = StageFinal
	return nil
}

// Submit hands the finished answer to the writer exactly once. A call while
// another is in flight returns ErrSubmitInProgress without writing; a call
// after a successful submission is a no-op. A failed write leaves the session
// in the final stage so the caller may try again.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.stage == StageSubmitted:
		s.mu.Unlock()
		return nil
	case s.stage != StageFinal:
		stage := s.stage
		s.mu.Unlock()
		return fmt.Errorf("submit in %s: %w", stage, ErrInvalidStep)
	case s.uploading:
		s.mu.Unlock()
		return ErrSubmitInProgress
	case s.writer == nil:
		s.mu.Unlock()
		return ErrNoWriter
	}
	s.uploading = true
	answer := s.answerLocked()
	s.mu.Unlock()

	err := s.writer.PutAnswer(ctx, answer)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = false
	if err != nil {
		s.log.Error().Err(err).Str("session_id", s.id).Msg("Answer submission failed")
		return fmt.Errorf("put answer: %w", err)
	}
	s.stage = StageSubmitted
	s.log.Info().
		Str("session_id", s.id).
		Str("result_id", s.resultID).
		Int("answers", len(s.answers)).
		Msg("Answer submitted")
	return nil
}

// Record builds the answer record as it would be submitted now.
func (s *Session) Record() *model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answerLocked()
}

// ─── Internals ───────────────────────────────────────────────────────

func (s *Session) enterQuiz(quizID string) error {
	quiz, ok := s.idx.Quiz(quizID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrQuizNotFound, quizID)
	}

	if q, ok := quiz.(*model.OneInTwoQuiz); ok {
		plan, err := GeneratePairs(q.Choices, s.rng)
		if err != nil {
			return fmt.Errorf("quiz %q: %w", quizID, err)
		}
		if len(plan.Dropped) > 0 {
			s.log.Warn().
				Str("session_id", s.id).
				Str("quiz_id", quizID).
				Int("dropped", len(plan.Dropped)).
				Msg("Unpaired choices dropped from oneInTwo rounds")
		}
		// Entering again (through a backward branch) starts the comparison over.
		delete(s.answers, quizID)
		s.pairs[quizID] = &pairRun{rounds: plan.Rounds, dropped: len(plan.Dropped)}
	}

	s.stage = StageQuiz
	s.currentQuizID = quizID
	s.lastQuiz = s.idx.IsLast(quizID)
	return nil
}

func (s *Session) enterResult() error {
	profile := Fold(s.idx, s.answers)
	result, err := Resolve(profile, s.idx.Survey().Results)
	if err != nil {
		return err
	}

	s.stage = StageResult
	s.resultID = result.ID
	s.currentQuizID = ""
	s.lastQuiz = false
	s.log.Debug().
		Str("session_id", s.id).
		Str("result_id", result.ID).
		Int("dimensions", len(profile)).
		Msg("Result resolved")
	return nil
}

func (s *Session) currentRun() (*pairRun, error) {
	if s.stage != StageQuiz {
		return nil, fmt.Errorf("round in %s: %w", s.stage, ErrInvalidStep)
	}
	run, ok := s.pairs[s.currentQuizID]
	if !ok {
		return nil, fmt.Errorf("quiz %q is not a oneInTwo quiz: %w", s.currentQuizID, ErrInvalidStep)
	}
	return run, nil
}

func (s *Session) answered(quiz model.Quiz) bool {
	if run, ok := s.pairs[quiz.QuizID()]; ok {
		return run.next >= len(run.rounds)
	}
	av, ok := s.answers[quiz.QuizID()]
	return ok && (av.Value != nil || len(av.Values) > 0)
}

func (s *Session) answerLocked() *model.Answer {
	final := make(model.FinalInfo, len(s.final))
	for k, v := range s.final {
		final[k] = v
	}
	return &model.Answer{
		ID:        s.id,
		SurveyID:  s.idx.Survey().ID,
		Answers:   copyAnswers(s.answers),
		ResultID:  s.resultID,
		Final:     final,
		CreatedAt: s.createdAt,
		UpdatedAt: s.now(),
	}
}

func validateAnswer(quiz model.Quiz, value model.AnswerValue) error {
	switch q := quiz.(type) {
	case *model.SelectionQuiz:
		if len(value.Values) > q.Limit() {
			return fmt.Errorf("%w: %d > %d", ErrTooManyValues, len(value.Values), q.Limit())
		}
		return knownChoices(q.Choices, value.Values)
	case *model.OneInTwoQuiz:
		// Values of a oneInTwo quiz are the ordered picks, recorded only by Pick.
		return fmt.Errorf("oneInTwo answers are recorded by picking rounds: %w", ErrInvalidStep)
	case *model.DraggerQuiz:
		return knownChoices(q.Choices, value.Values)
	case *model.SliderQuiz:
		if value.Value == nil || q.Max <= q.Min {
			return nil
		}
		f, ok := value.Value.Float()
		if !ok || f < q.Min || f > q.Max {
			return fmt.Errorf("%w: %s", ErrValueOutOfRange, value.Value.String())
		}
		return nil
	case *model.PageQuiz, *model.FillQuiz:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownQuizType, quiz)
	}
}

func knownChoices(choices []model.Choice, ids []string) error {
	for _, id := range ids {
		if _, ok := model.FindChoice(choices, id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownChoice, id)
		}
	}
	return nil
}

func copyAnswers(in map[string]model.AnswerValue) map[string]model.AnswerValue {
	out := make(map[string]model.AnswerValue, len(in))
	for k, v := range in {
		v.Values = cloneValues(v.Values)
		out[k] = v
	}
	return out
}

// cloneValues copies v, keeping an empty non-nil slice empty rather than nil.
func cloneValues(v []string) []string {
	if v == nil {
		return nil
	}
	return append(make([]string, 0, len(v)), v...)
}

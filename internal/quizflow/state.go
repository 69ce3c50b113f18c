package quizflow

import (
	"fmt"
	"time"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// State is the serializable snapshot of a Session. The upload flag is not
// stored; a restored session is never uploading.
type State struct {
	ID            string                       `json:"id"`
	SurveyID      string                       `json:"surveyId"`
	Answers       map[string]model.AnswerValue `json:"answers"`
	CurrentQuizID string                       `json:"currentQuizId,omitempty"`
	Stage         Stage                        `json:"step"`
	ResultID      string                       `json:"resultId,omitempty"`
	Final         model.FinalInfo              `json:"final,omitempty"`
	LastQuiz      bool                         `json:"lastQuiz"`
	Rounds        map[string]RoundState        `json:"rounds,omitempty"`
	CreatedAt     time.Time                    `json:"createdAt"`
}

// RoundState is the stored progress of one oneInTwo quiz.
type RoundState struct {
	Pairs   [][2]string `json:"pairs"`
	Next    int         `json:"next"`
	Dropped int         `json:"dropped,omitempty"`
}

// State captures the session for storage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	final := make(model.FinalInfo, len(s.final))
	for k, v := range s.final {
		final[k] = v
	}
	rounds := make(map[string]RoundState, len(s.pairs))
	for quizID, run := range s.pairs {
		rounds[quizID] = RoundState{Pairs: RoundIDs(run.rounds), Next: run.next, Dropped: run.dropped}
	}

	return State{
		ID:            s.id,
		SurveyID:      s.idx.Survey().ID,
		Answers:       copyAnswers(s.answers),
		CurrentQuizID: s.currentQuizID,
		Stage:         s.stage,
		ResultID:      s.resultID,
		Final:         final,
		LastQuiz:      s.lastQuiz,
		Rounds:        rounds,
		CreatedAt:     s.createdAt,
	}
}

// Restore rebuilds a session from a snapshot taken against the same survey.
func Restore(idx *Index, st State, opts ...Option) (*Session, error) {
	if st.SurveyID != idx.Survey().ID {
		return nil, fmt.Errorf("%w: %q != %q", ErrSurveyMismatch, st.SurveyID, idx.Survey().ID)
	}

	s := newSession(idx, append([]Option{WithID(st.ID)}, opts...))
	s.answers = copyAnswers(st.Answers)
	s.currentQuizID = st.CurrentQuizID
	s.stage = st.Stage
	s.resultID = st.ResultID
	s.lastQuiz = st.LastQuiz
	s.createdAt = st.CreatedAt
	for k, v := range st.Final {
		s.final[k] = v
	}

	switch st.Stage {
	case StageQuiz:
		if idx.Len() == 0 {
			return nil, ErrEmptySurvey
		}
		if _, ok := idx.Quiz(st.CurrentQuizID); !ok {
			return nil, fmt.Errorf("%w: %q", ErrQuizNotFound, st.CurrentQuizID)
		}
	case StageResult, StageFinal, StageSubmitted:
	default:
		return nil, fmt.Errorf("unknown stage %q: %w", st.Stage, ErrInvalidStep)
	}

	for quizID, rs := range st.Rounds {
		quiz, ok := idx.Quiz(quizID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrQuizNotFound, quizID)
		}
		q, ok := quiz.(*model.OneInTwoQuiz)
		if !ok {
			return nil, fmt.Errorf("rounds for %q: %w: %T", quizID, ErrUnknownQuizType, quiz)
		}
		rounds, err := roundsFromIDs(q.Choices, rs.Pairs)
		if err != nil {
			return nil, fmt.Errorf("quiz %q: %w", quizID, err)
		}
		if rs.Next < 0 || rs.Next > len(rounds) {
			return nil, fmt.Errorf("quiz %q: round %d of %d: %w", quizID, rs.Next, len(rounds), ErrInvalidStep)
		}
		s.pairs[quizID] = &pairRun{rounds: rounds, next: rs.Next, dropped: rs.Dropped}
	}
	return s, nil
}

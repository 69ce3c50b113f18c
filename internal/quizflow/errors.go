package quizflow

import "errors"

// Data-integrity errors. These point at broken survey content; the engine refuses to guess.
var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrDuplicateQuiz   = errors.New("duplicate quiz id")
	ErrDuplicateChoice = errors.New("duplicate choice id")
	ErrUnknownNext     = errors.New("next points to an unknown quiz")
	ErrEmptySurvey     = errors.New("survey has no quizzes")
	ErrNoDefaultResult = errors.New("no result matched and no default result is configured")
	ErrUnknownQuizType = errors.New("unknown quiz type")
)

// Session errors.
var (
	ErrInvalidStep      = errors.New("operation not allowed in the current step")
	ErrTooManyValues    = errors.New("answer exceeds the quiz's maximum choices")
	ErrUnknownChoice    = errors.New("choice does not belong to the quiz")
	ErrAnswerRequired   = errors.New("quiz requires an answer")
	ErrNotInRound       = errors.New("choice is not part of the current round")
	ErrRoundsExhausted  = errors.New("all rounds have been answered")
	ErrSubmitInProgress = errors.New("submission already in progress")
)

package quizflow

import (
	"fmt"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// Step is the outcome of Next: either the id of the quiz to show or Done.
type Step struct {
	QuizID string
	Done   bool
}

// Next decides which quiz follows currentQuizID given the answer recorded for it.
//
// An empty currentQuizID starts the survey. A single-answer selection (or sort)
// quiz whose chosen choice carries a next pointer jumps there; every other quiz
// moves to the following quiz in array order, and the last quiz yields Done.
// An unknown currentQuizID is an error and never advances.
func Next(idx *Index, currentQuizID string, answer *model.AnswerValue) (Step, error) {
	if currentQuizID != "" && idx.Len() == 0 {
		return Step{}, ErrEmptySurvey
	}
	if currentQuizID == "" {
		first, ok := idx.First()
		if !ok {
			return Step{Done: true}, nil
		}
		return Step{QuizID: first}, nil
	}

	quiz, ok := idx.Quiz(currentQuizID)
	if !ok {
		return Step{}, fmt.Errorf("%w: %q", ErrQuizNotFound, currentQuizID)
	}

	switch q := quiz.(type) {
	case *model.SelectionQuiz:
		if target := branchTarget(q, answer); target != "" {
			if _, ok := idx.Quiz(target); !ok {
				return Step{}, fmt.Errorf("%w: %q", ErrUnknownNext, target)
			}
			return Step{QuizID: target}, nil
		}
	case *model.PageQuiz, *model.FillQuiz, *model.SliderQuiz, *model.OneInTwoQuiz, *model.DraggerQuiz:
		// Linear order only.
	default:
		return Step{}, fmt.Errorf("%w: %T", ErrUnknownQuizType, quiz)
	}

	if after, ok := idx.After(currentQuizID); ok {
		return Step{QuizID: after}, nil
	}
	return Step{Done: true}, nil
}

func branchTarget(q *model.SelectionQuiz, answer *model.AnswerValue) string {
	if !q.SingleAnswer() || answer == nil || len(answer.Values) == 0 {
		return ""
	}
	c, ok := model.FindChoice(q.Choices, answer.Values[0])
	if !ok {
		return ""
	}
	return c.Next
}

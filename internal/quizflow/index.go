package quizflow

import (
	"fmt"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// Index is a validated, id-addressable view of a survey. Build it once per
// survey version with Compile and share it read-only between sessions.
type Index struct {
	survey *model.Survey
	pos    map[string]int
	cyclic bool
}

// Compile validates a survey and indexes its quizzes by id.
//
// Quiz ids must be unique, choice ids must be unique within their quiz, and a
// honored next pointer (single-answer selection quizzes only) must name an
// existing quiz. Next pointers on other quizzes are ignored. Branches that
// jump backwards are allowed; revisiting a quiz replaces its earlier answer.
// A configured default result must exist in the result list.
func Compile(s *model.Survey) (*Index, error) {
	if id := s.Results.DefaultID; id != "" {
		if _, ok := s.Results.List[id]; !ok {
			return nil, fmt.Errorf("%w: default %q is not in the result list", ErrNoDefaultResult, id)
		}
	}

	pos := make(map[string]int, len(s.Quizzes))
	for i, q := range s.Quizzes {
		if q == nil {
			return nil, fmt.Errorf("quiz %d: %w", i, ErrUnknownQuizType)
		}
		id := q.QuizID()
		if _, dup := pos[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateQuiz, id)
		}
		pos[id] = i
	}

	idx := &Index{survey: s, pos: pos}
	for i, q := range s.Quizzes {
		backward, err := idx.checkQuiz(i, q)
		if err != nil {
			return nil, fmt.Errorf("quiz %q: %w", q.QuizID(), err)
		}
		if backward {
			idx.cyclic = true
		}
	}
	return idx, nil
}

// checkQuiz validates one quiz and reports whether one of its branches points
// at itself or an earlier quiz. Linear order always leads from any earlier
// quiz back to this one, so such a branch closes a cycle.
func (x *Index) checkQuiz(at int, q model.Quiz) (bool, error) {
	switch v := q.(type) {
	case *model.SelectionQuiz:
		if err := uniqueChoices(v.Choices); err != nil {
			return false, err
		}
		if !v.SingleAnswer() {
			return false, nil
		}
		backward := false
		for _, c := range v.Choices {
			if c.Next == "" {
				continue
			}
			target, ok := x.pos[c.Next]
			if !ok {
				return false, fmt.Errorf("choice %q: %w: %q", c.ID, ErrUnknownNext, c.Next)
			}
			if target <= at {
				backward = true
			}
		}
		return backward, nil
	case *model.OneInTwoQuiz:
		return false, uniqueChoices(v.Choices)
	case *model.DraggerQuiz:
		return false, uniqueChoices(v.Choices)
	case *model.PageQuiz, *model.FillQuiz, *model.SliderQuiz:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %T", ErrUnknownQuizType, q)
	}
}

func uniqueChoices(choices []model.Choice) error {
	seen := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateChoice, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Survey returns the underlying definition.
func (x *Index) Survey() *model.Survey { return x.survey }

// Len returns the number of quizzes.
func (x *Index) Len() int { return len(x.survey.Quizzes) }

// HasCycle reports whether branch pointers allow a quiz to be visited twice.
func (x *Index) HasCycle() bool { return x.cyclic }

// Quiz looks up a quiz by id.
func (x *Index) Quiz(id string) (model.Quiz, bool) {
	i, ok := x.pos[id]
	if !ok {
		return nil, false
	}
	return x.survey.Quizzes[i], true
}

// Position returns the array position of a quiz, or -1.
func (x *Index) Position(id string) int {
	if i, ok := x.pos[id]; ok {
		return i
	}
	return -1
}

// First returns the id of the first quiz.
func (x *Index) First() (string, bool) {
	if len(x.survey.Quizzes) == 0 {
		return "", false
	}
	return x.survey.Quizzes[0].QuizID(), true
}

// After returns the id of the quiz that follows id in array order.
func (x *Index) After(id string) (string, bool) {
	i, ok := x.pos[id]
	if !ok || i+1 >= len(x.survey.Quizzes) {
		return "", false
	}
	return x.survey.Quizzes[i+1].QuizID(), true
}

// IsLast reports whether id is the last quiz in array order.
func (x *Index) IsLast(id string) bool {
	i, ok := x.pos[id]
	return ok && i == len(x.survey.Quizzes)-1
}

// DeclaresTag reports whether the survey declares the tag dimension.
func (x *Index) DeclaresTag(tagID string) bool {
	_, ok := x.survey.Tags[tagID]
	return ok
}

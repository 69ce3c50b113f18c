package quizflow

import (
	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// TagProfile accumulates, per tag dimension, every value asserted by the
// choices a respondent selected. Repeated values are kept; it is a multiset.
type TagProfile map[string][]string

// Merge appends every tag value of c to the profile.
func (p TagProfile) Merge(c model.Choice) {
	for tagID, values := range c.Tags {
		p[tagID] = append(p[tagID], values...)
	}
}

// Count returns how many times value was accumulated under tagID.
func (p TagProfile) Count(tagID, value string) int {
	n := 0
	for _, v := range p[tagID] {
		if v == value {
			n++
		}
	}
	return n
}

// Fold rebuilds the profile from the current answers. It is recomputed rather
// than streamed, so re-answering a quiz replaces its contribution. Quizzes are
// visited in survey order and tag dimensions the survey does not declare are
// skipped. Answers to unknown quizzes or unknown choices contribute nothing.
func Fold(idx *Index, answers map[string]model.AnswerValue) TagProfile {
	profile := make(TagProfile)
	for _, quiz := range idx.Survey().Quizzes {
		answer, ok := answers[quiz.QuizID()]
		if !ok {
			continue
		}
		choices := model.ChoicesOf(quiz)
		if len(choices) == 0 {
			continue
		}

		seen := make(map[string]struct{}, len(answer.Values))
		for _, id := range answer.Values {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			c, ok := model.FindChoice(choices, id)
			if !ok {
				continue
			}
			profile.Merge(declaredOnly(idx, c))
		}
	}
	return profile
}

func declaredOnly(idx *Index, c model.Choice) model.Choice {
	tags := make(map[string][]string, len(c.Tags))
	for tagID, values := range c.Tags {
		if idx.DeclaresTag(tagID) {
			tags[tagID] = values
		}
	}
	c.Tags = tags
	return c
}

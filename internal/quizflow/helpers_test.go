package quizflow

import (
	"testing"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

func page(id string) *model.PageQuiz {
	return &model.PageQuiz{QuizBase: model.QuizBase{ID: id, Mode: model.QuizModePage, Title: id}}
}

func selection(id string, maxChoices int, choices ...model.Choice) *model.SelectionQuiz {
	return &model.SelectionQuiz{
		QuizBase:   model.QuizBase{ID: id, Mode: model.QuizModeSelection, Title: id},
		Choices:    choices,
		MaxChoices: maxChoices,
	}
}

func oneInTwo(id string, choices ...model.Choice) *model.OneInTwoQuiz {
	return &model.OneInTwoQuiz{
		QuizBase: model.QuizBase{ID: id, Mode: model.QuizModeOneInTwo, Title: id},
		Choices:  choices,
	}
}

func choice(id string, tags map[string][]string) model.Choice {
	return model.Choice{ID: id, Label: id, Tags: tags}
}

func branch(id, next string) model.Choice {
	return model.Choice{ID: id, Label: id, Next: next}
}

func survey(quizzes ...model.Quiz) *model.Survey {
	return &model.Survey{
		ID:      "s1",
		Quizzes: quizzes,
		Tags: map[string]model.Tag{
			"t1":    {ID: "t1", Label: "T1", Values: []string{"a", "b", "c"}},
			"color": {ID: "color", Label: "Color", Values: []string{"red", "blue"}},
		},
		Results: model.Results{
			List: model.ResultList{
				"r0": {ID: "r0", Title: "Default"},
			},
			DefaultID: "r0",
		},
	}
}

func mustCompile(t *testing.T, s *model.Survey) *Index {
	t.Helper()
	idx, err := Compile(s)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return idx
}

// identity keeps the input order.
type identity struct{}

func (identity) Shuffle(int, func(i, j int)) {}

// reverse flips the input order.
type reverse struct{}

func (reverse) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

package quizflow

import (
	"errors"
	"testing"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

func TestNextLinear(t *testing.T) {
	idx := mustCompile(t, survey(page("Q1"), page("Q2"), page("Q3"), page("Q4")))

	step, err := Next(idx, "", nil)
	if err != nil || step.QuizID != "Q1" || step.Done {
		t.Fatalf("Expected start at Q1, got %+v (%v)", step, err)
	}

	ids := []string{"Q1", "Q2", "Q3", "Q4"}
	for i, id := range ids {
		step, err := Next(idx, id, nil)
		if err != nil {
			t.Fatalf("Next(%s): %v", id, err)
		}
		if i == len(ids)-1 {
			if !step.Done {
				t.Errorf("Expected done after %s, got %+v", id, step)
			}
			continue
		}
		if step.Done || step.QuizID != ids[i+1] {
			t.Errorf("Expected %s after %s, got %+v", ids[i+1], id, step)
		}
	}
}

func TestNextEmptySurvey(t *testing.T) {
	idx := mustCompile(t, survey())

	step, err := Next(idx, "", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !step.Done {
		t.Errorf("Expected done for a survey without quizzes, got %+v", step)
	}

	if _, err := Next(idx, "Q1", nil); !errors.Is(err, ErrEmptySurvey) {
		t.Errorf("Expected ErrEmptySurvey when a quiz step is expected, got %v", err)
	}
}

func TestNextBranching(t *testing.T) {
	sortQuiz := selection("S1", 1, branch("s-a", "Q2"), choice("s-b", nil))
	sortQuiz.Mode = model.QuizModeSort

	idx := mustCompile(t, survey(
		selection("Q1", 1, branch("c1", "Q7"), choice("c2", nil)),
		page("Q2"),
		page("Q7"),
		selection("M1", 2, branch("m1", "Q2"), choice("m2", nil)),
		sortQuiz,
		page("Q9"),
	))

	tests := []struct {
		name    string
		current string
		answer  *model.AnswerValue
		want    Step
	}{
		{
			name:    "chosen choice with next jumps",
			current: "Q1",
			answer:  &model.AnswerValue{QuizID: "Q1", Values: []string{"c1"}},
			want:    Step{QuizID: "Q7"},
		},
		{
			name:    "chosen choice without next is linear",
			current: "Q1",
			answer:  &model.AnswerValue{QuizID: "Q1", Values: []string{"c2"}},
			want:    Step{QuizID: "Q2"},
		},
		{
			name:    "no answer is linear",
			current: "Q1",
			want:    Step{QuizID: "Q2"},
		},
		{
			name:    "empty values is linear",
			current: "Q1",
			answer:  &model.AnswerValue{QuizID: "Q1"},
			want:    Step{QuizID: "Q2"},
		},
		{
			name:    "multi-answer quiz ignores next",
			current: "M1",
			answer:  &model.AnswerValue{QuizID: "M1", Values: []string{"m1"}},
			want:    Step{QuizID: "S1"},
		},
		{
			name:    "single-answer sort honors next",
			current: "S1",
			answer:  &model.AnswerValue{QuizID: "S1", Values: []string{"s-a"}},
			want:    Step{QuizID: "Q2"},
		},
		{
			name:    "last quiz is done",
			current: "Q9",
			want:    Step{Done: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(idx, tt.current, tt.answer)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNextUnknownCurrent(t *testing.T) {
	idx := mustCompile(t, survey(page("Q1")))

	step, err := Next(idx, "missing", nil)
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("Expected ErrQuizNotFound, got %v", err)
	}
	if step.Done || step.QuizID != "" {
		t.Errorf("Expected no movement on error, got %+v", step)
	}
}

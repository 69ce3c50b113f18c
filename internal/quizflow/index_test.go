package quizflow

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		survey  *model.Survey
		wantErr error
		cyclic  bool
	}{
		{
			name:   "linear survey",
			survey: survey(page("Q1"), page("Q2")),
		},
		{
			name:    "duplicate quiz id",
			survey:  survey(page("Q1"), page("Q1")),
			wantErr: ErrDuplicateQuiz,
		},
		{
			name:    "duplicate choice id",
			survey:  survey(selection("Q1", 2, choice("c1", nil), choice("c1", nil))),
			wantErr: ErrDuplicateChoice,
		},
		{
			name:    "duplicate choice id in oneInTwo",
			survey:  survey(oneInTwo("Q1", choice("c1", nil), choice("c1", nil))),
			wantErr: ErrDuplicateChoice,
		},
		{
			name:    "next to unknown quiz",
			survey:  survey(selection("Q1", 1, branch("c1", "Q9")), page("Q2")),
			wantErr: ErrUnknownNext,
		},
		{
			name:   "next ignored on multi-answer quiz",
			survey: survey(selection("Q1", 2, branch("c1", "Q9")), page("Q2")),
		},
		{
			name:   "forward branch",
			survey: survey(selection("Q1", 1, branch("c1", "Q3")), page("Q2"), page("Q3")),
		},
		{
			name:   "backward branch is a cycle",
			survey: survey(page("Q1"), selection("Q2", 1, branch("c1", "Q1")), page("Q3")),
			cyclic: true,
		},
		{
			name:   "self branch is a cycle",
			survey: survey(selection("Q1", 1, branch("c1", "Q1"))),
			cyclic: true,
		},
		{
			name:    "nil quiz",
			survey:  survey(page("Q1"), nil),
			wantErr: ErrUnknownQuizType,
		},
		{
			name: "default result not in list",
			survey: func() *model.Survey {
				s := survey(page("Q1"))
				s.Results.DefaultID = "gone"
				return s
			}(),
			wantErr: ErrNoDefaultResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Compile(tt.survey)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if idx.HasCycle() != tt.cyclic {
				t.Errorf("Expected HasCycle %v, got %v", tt.cyclic, idx.HasCycle())
			}
		})
	}
}

func TestIndexLookups(t *testing.T) {
	idx := mustCompile(t, survey(page("Q1"), page("Q2"), page("Q3")))

	if first, ok := idx.First(); !ok || first != "Q1" {
		t.Errorf("Expected first Q1, got %q (%v)", first, ok)
	}
	if after, ok := idx.After("Q2"); !ok || after != "Q3" {
		t.Errorf("Expected Q3 after Q2, got %q (%v)", after, ok)
	}
	if _, ok := idx.After("Q3"); ok {
		t.Error("Expected nothing after the last quiz")
	}
	if !idx.IsLast("Q3") || idx.IsLast("Q1") {
		t.Error("IsLast mismatch")
	}
	if idx.Position("Q2") != 1 || idx.Position("nope") != -1 {
		t.Error("Position mismatch")
	}
	if !idx.DeclaresTag("t1") || idx.DeclaresTag("t9") {
		t.Error("DeclaresTag mismatch")
	}
}

func TestCompileDecodedSurvey(t *testing.T) {
	raw := `{
		"id": "s-json",
		"quizzes": [
			{"id": "Q1", "mode": "page", "title": "Welcome"},
			{"id": "Q2", "mode": "selection", "title": "Pick", "maxChoices": 1,
			 "choices": [{"id": "c1", "label": "One", "tags": {"t1": ["a"]}, "next": "Q5"}, {"id": "c2", "label": "Two"}]},
			{"id": "Q3", "mode": "fill", "title": "Name"},
			{"id": "Q4", "mode": "slider", "title": "Age", "min": 0, "max": 100},
			{"id": "Q5", "mode": "oneInTwo", "title": "Versus", "choices": [{"id": "x"}, {"id": "y"}]},
			{"id": "Q6", "mode": "dragger", "title": "Swipe", "choices": [{"id": "d1"}]},
			{"id": "Q7", "mode": "sort", "title": "Rank", "maxChoices": 2, "choices": [{"id": "s1"}, {"id": "s2"}]}
		],
		"tags": {"t1": {"id": "t1", "label": "T1", "values": ["a", "b"]}},
		"results": {"selectedTags": ["t1"], "list": {"r1": {"id": "r1", "title": "R1", "tags": {"t1": ["a"]}}}, "defaultId": "r1"},
		"final": {"mode": "form"}
	}`

	var s model.Survey
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Failed to decode survey: %v", err)
	}
	idx := mustCompile(t, &s)

	if idx.Len() != 7 {
		t.Fatalf("Expected 7 quizzes, got %d", idx.Len())
	}

	wantTypes := map[string]string{
		"Q1": "*model.PageQuiz",
		"Q2": "*model.SelectionQuiz",
		"Q3": "*model.FillQuiz",
		"Q4": "*model.SliderQuiz",
		"Q5": "*model.OneInTwoQuiz",
		"Q6": "*model.DraggerQuiz",
		"Q7": "*model.SelectionQuiz",
	}
	for id, want := range wantTypes {
		q, ok := idx.Quiz(id)
		if !ok {
			t.Fatalf("Quiz %s missing", id)
		}
		if got := typeName(q); got != want {
			t.Errorf("Quiz %s: expected %s, got %s", id, want, got)
		}
	}

	q7, _ := idx.Quiz("Q7")
	if q7.QuizMode() != model.QuizModeSort {
		t.Errorf("Expected sort mode to survive decoding, got %s", q7.QuizMode())
	}
}

func TestDecodeUnknownMode(t *testing.T) {
	var s model.Survey
	err := json.Unmarshal([]byte(`{"id":"s","quizzes":[{"id":"Q1","mode":"video"}]}`), &s)
	if !errors.Is(err, model.ErrUnknownQuizMode) {
		t.Fatalf("Expected ErrUnknownQuizMode, got %v", err)
	}
}

func typeName(q model.Quiz) string {
	switch q.(type) {
	case *model.PageQuiz:
		return "*model.PageQuiz"
	case *model.FillQuiz:
		return "*model.FillQuiz"
	case *model.SelectionQuiz:
		return "*model.SelectionQuiz"
	case *model.SliderQuiz:
		return "*model.SliderQuiz"
	case *model.OneInTwoQuiz:
		return "*model.OneInTwoQuiz"
	case *model.DraggerQuiz:
		return "*model.DraggerQuiz"
	default:
		return "unknown"
	}
}

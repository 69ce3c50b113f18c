package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAnswerValueRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // empty means the input comes back unchanged
	}{
		{name: "quiz id only", in: `{"quizId":"q"}`},
		{name: "string value", in: `{"quizId":"q","value":"hello"}`},
		{name: "numeric string stays a string", in: `{"quizId":"q","value":"42"}`},
		{name: "integer value", in: `{"quizId":"q","value":42}`},
		{name: "exponent literal kept", in: `{"quizId":"q","value":1e3}`},
		{name: "trailing zero kept", in: `{"quizId":"q","value":7.50}`},
		{name: "negative fraction", in: `{"quizId":"q","value":-0.5}`},
		{name: "null value", in: `{"quizId":"q","value":null}`, want: `{"quizId":"q"}`},
		{name: "empty values kept", in: `{"quizId":"q","values":[]}`},
		{name: "values", in: `{"quizId":"q","values":["a","b"]}`},
		{name: "whole dwell time", in: `{"quizId":"q","dwellTime":800}`},
		{name: "fractional dwell time", in: `{"quizId":"q","dwellTime":1200.5}`},
		{name: "every field", in: `{"quizId":"q","value":3,"values":["a"],"dwellTime":12.25}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v AnswerValue
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			want := tt.want
			if want == "" {
				want = tt.in
			}
			if string(out) != want {
				t.Errorf("Expected %s, got %s", want, out)
			}
		})
	}
}

func TestAnswerValueInMap(t *testing.T) {
	in := `{"q1":{"quizId":"q1","values":[]},"q2":{"quizId":"q2","value":7.50}}`

	var answers map[string]AnswerValue
	if err := json.Unmarshal([]byte(in), &answers); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("Expected %s, got %s", in, out)
	}
}

func TestScalarRejectsNonScalars(t *testing.T) {
	for _, raw := range []string{`true`, `[1]`, `{"a":1}`} {
		t.Run(raw, func(t *testing.T) {
			var v AnswerValue
			err := json.Unmarshal([]byte(`{"quizId":"q","value":`+raw+`}`), &v)
			if !errors.Is(err, ErrInvalidScalar) {
				t.Errorf("Expected ErrInvalidScalar, got %v", err)
			}
		})
	}
}

func TestScalarAccessors(t *testing.T) {
	n := NumberValue(1.5)
	if !n.IsNumber() || n.String() != "1.5" {
		t.Errorf("Unexpected number scalar %q (number=%v)", n.String(), n.IsNumber())
	}
	if f, ok := n.Float(); !ok || f != 1.5 {
		t.Errorf("Expected 1.5, got %v %v", f, ok)
	}

	s := StringValue("1.5")
	if s.IsNumber() {
		t.Error("String scalar must not report a number")
	}
	if _, ok := s.Float(); ok {
		t.Error("String scalar must not convert to a float")
	}
}

func TestDecodeQuiz(t *testing.T) {
	tests := []struct {
		raw   string
		check func(t *testing.T, q Quiz)
	}{
		{`{"id":"p","mode":"page","title":"Hi"}`, func(t *testing.T, q Quiz) {
			if _, ok := q.(*PageQuiz); !ok {
				t.Errorf("Expected *PageQuiz, got %T", q)
			}
		}},
		{`{"id":"f","mode":"fill","placeholder":"Name"}`, func(t *testing.T, q Quiz) {
			if v, ok := q.(*FillQuiz); !ok || v.Placeholder != "Name" {
				t.Errorf("Expected *FillQuiz with placeholder, got %#v", q)
			}
		}},
		{`{"id":"s","mode":"selection","maxChoices":1,"required":true,"choices":[{"id":"a","next":"z"}]}`, func(t *testing.T, q Quiz) {
			v, ok := q.(*SelectionQuiz)
			if !ok || !v.SingleAnswer() || !v.IsRequired() || v.Choices[0].Next != "z" {
				t.Errorf("Expected single-answer *SelectionQuiz, got %#v", q)
			}
		}},
		{`{"id":"o","mode":"sort","choices":[{"id":"a"},{"id":"b"}]}`, func(t *testing.T, q Quiz) {
			v, ok := q.(*SelectionQuiz)
			if !ok || v.QuizMode() != QuizModeSort || v.Limit() != 2 {
				t.Errorf("Expected sort *SelectionQuiz with limit 2, got %#v", q)
			}
		}},
		{`{"id":"r","mode":"slider","min":1,"max":10,"step":0.5}`, func(t *testing.T, q Quiz) {
			if v, ok := q.(*SliderQuiz); !ok || v.Min != 1 || v.Max != 10 || v.Step != 0.5 {
				t.Errorf("Expected *SliderQuiz 1..10, got %#v", q)
			}
		}},
		{`{"id":"v","mode":"oneInTwo","choices":[{"id":"a","tags":{"t":["x"]}},{"id":"b"}]}`, func(t *testing.T, q Quiz) {
			v, ok := q.(*OneInTwoQuiz)
			if !ok || len(v.Choices) != 2 || v.Choices[0].Tags["t"][0] != "x" {
				t.Errorf("Expected *OneInTwoQuiz with tagged choices, got %#v", q)
			}
		}},
		{`{"id":"d","mode":"dragger","choices":[{"id":"a"}]}`, func(t *testing.T, q Quiz) {
			if v, ok := q.(*DraggerQuiz); !ok || len(ChoicesOf(v)) != 1 {
				t.Errorf("Expected *DraggerQuiz, got %#v", q)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q, err := DecodeQuiz([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeQuiz: %v", err)
			}
			tt.check(t, q)
		})
	}
}

func TestDecodeQuizErrors(t *testing.T) {
	if _, err := DecodeQuiz([]byte(`{"id":"x","mode":"carousel"}`)); !errors.Is(err, ErrUnknownQuizMode) {
		t.Errorf("Expected ErrUnknownQuizMode, got %v", err)
	}
	if _, err := DecodeQuiz([]byte(`{"id":`)); err == nil {
		t.Error("Expected an error for malformed JSON")
	}

	var s Survey
	err := json.Unmarshal([]byte(`{"id":"s","quizzes":[{"id":"a","mode":"page"},{"id":"b","mode":"nope"}]}`), &s)
	if !errors.Is(err, ErrUnknownQuizMode) || !strings.Contains(err.Error(), "quiz 1") {
		t.Errorf("Expected ErrUnknownQuizMode at quiz 1, got %v", err)
	}
}

func TestSurveyOmitsUnsetTimestamps(t *testing.T) {
	out, err := json.Marshal(Survey{ID: "s"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(out), "createdAt") || strings.Contains(string(out), "updatedAt") {
		t.Errorf("Expected no timestamps, got %s", out)
	}

	out, err = json.Marshal(Survey{ID: "s", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"createdAt":"2024-01-02T03:04:05Z"`) {
		t.Errorf("Expected createdAt, got %s", out)
	}
}

package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// QuizMode discriminates the quiz variants on the wire.
type QuizMode string

const (
	QuizModePage      QuizMode = "page"
	QuizModeFill      QuizMode = "fill"
	QuizModeSelection QuizMode = "selection"
	QuizModeSort      QuizMode = "sort"
	QuizModeSlider    QuizMode = "slider"
	QuizModeOneInTwo  QuizMode = "oneInTwo"
	QuizModeDragger   QuizMode = "dragger"
)

// ErrUnknownQuizMode is returned when a quiz definition carries a mode this service does not know.
var ErrUnknownQuizMode = errors.New("unknown quiz mode")

// Quiz is one step of a survey. The concrete type is one of *PageQuiz, *FillQuiz,
// *SelectionQuiz, *SliderQuiz, *OneInTwoQuiz or *DraggerQuiz.
type Quiz interface {
	QuizID() string
	QuizMode() QuizMode
	IsRequired() bool
	quiz()
}

// QuizBase carries the fields shared by every quiz variant.
type QuizBase struct {
	ID       string   `json:"id"`
	Mode     QuizMode `json:"mode"`
	Title    string   `json:"title"`
	Required bool     `json:"required,omitempty"`
	// Styling is kept opaque; the flow engine never reads it.
	Button       json.RawMessage `json:"button,omitempty"`
	CustomButton json.RawMessage `json:"customButton,omitempty"`
}

func (b *QuizBase) QuizID() string     { return b.ID }
func (b *QuizBase) QuizMode() QuizMode { return b.Mode }
func (b *QuizBase) IsRequired() bool   { return b.Required }
func (b *QuizBase) quiz()              {}

// PageQuiz is an informational page with no input.
type PageQuiz struct {
	QuizBase
}

// FillQuiz collects free text.
type FillQuiz struct {
	QuizBase
	Placeholder string `json:"placeholder,omitempty"`
}

// SelectionQuiz covers both the "selection" and "sort" modes.
type SelectionQuiz struct {
	QuizBase
	Choices    []Choice `json:"choices"`
	MaxChoices int      `json:"maxChoices"`
}

// Limit is the maximum number of values an answer may carry.
// A non-positive MaxChoices allows every choice.
func (q *SelectionQuiz) Limit() int {
	if q.MaxChoices > 0 {
		return q.MaxChoices
	}
	return len(q.Choices)
}

// SingleAnswer reports whether the quiz accepts exactly one choice, the only
// case where a choice's Next pointer applies.
func (q *SelectionQuiz) SingleAnswer() bool {
	return q.MaxChoices == 1
}

// SliderQuiz collects a number in [Min, Max].
type SliderQuiz struct {
	QuizBase
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step,omitempty"`
}

// OneInTwoQuiz presents forced two-choice comparison rounds.
type OneInTwoQuiz struct {
	QuizBase
	Choices []Choice `json:"choices"`
}

// DraggerQuiz lets the respondent swipe through cards, keeping the selected ones.
type DraggerQuiz struct {
	QuizBase
	Choices []Choice `json:"choices"`
}

// Choice is a selectable option within a quiz.
type Choice struct {
	ID    string              `json:"id"`
	Label string              `json:"label"`
	Tags  map[string][]string `json:"tags,omitempty"`
	// Next overrides the linear order; only honored on single-answer selection quizzes.
	Next string `json:"next,omitempty"`
}

// ChoicesOf returns the choices of a choice-bearing quiz, or nil.
func ChoicesOf(q Quiz) []Choice {
	switch v := q.(type) {
	case *SelectionQuiz:
		return v.Choices
	case *OneInTwoQuiz:
		return v.Choices
	case *DraggerQuiz:
		return v.Choices
	default:
		return nil
	}
}

// FindChoice looks up a choice by id.
func FindChoice(choices []Choice, id string) (Choice, bool) {
	for _, c := range choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// QuizList decodes the mode-discriminated quiz array into concrete variants.
type QuizList []Quiz

// UnmarshalJSON implements json.Unmarshaler.
func (l *QuizList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(QuizList, 0, len(raws))
	for i, raw := range raws {
		q, err := DecodeQuiz(raw)
		if err != nil {
			return fmt.Errorf("quiz %d: %w", i, err)
		}
		out = append(out, q)
	}
	*l = out
	return nil
}

// DecodeQuiz decodes a single quiz object by its mode.
func DecodeQuiz(raw []byte) (Quiz, error) {
	var head struct {
		Mode QuizMode `json:"mode"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	var q Quiz
	switch head.Mode {
	case QuizModePage:
		q = &PageQuiz{}
	case QuizModeFill:
		q = &FillQuiz{}
	case QuizModeSelection, QuizModeSort:
		q = &SelectionQuiz{}
	case QuizModeSlider:
		q = &SliderQuiz{}
	case QuizModeOneInTwo:
		q = &OneInTwoQuiz{}
	case QuizModeDragger:
		q = &DraggerQuiz{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuizMode, head.Mode)
	}

	if err := json.Unmarshal(raw, q); err != nil {
		return nil, err
	}
	return q, nil
}

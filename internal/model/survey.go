package model

import (
	"encoding/json"
	"time"
)

// Survey is a published survey definition. It is read-only during an answer run.
type Survey struct {
	ID        string         `json:"id"`
	Title     string         `json:"title,omitempty"`
	Quizzes   QuizList       `json:"quizzes"`
	Tags      map[string]Tag `json:"tags"`
	Results   Results        `json:"results"`
	Final     Final          `json:"final"`
	CreatedAt time.Time      `json:"createdAt,omitzero"`
	UpdatedAt time.Time      `json:"updatedAt,omitzero"`
}

// Tag is a classification dimension with its enumerated values.
type Tag struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
	Color  string   `json:"color,omitempty"`
}

// HasValue reports whether v is one of the tag's enumerated values.
func (t Tag) HasValue(v string) bool {
	for _, tv := range t.Values {
		if tv == v {
			return true
		}
	}
	return false
}

// Results holds the personalized outcomes of a survey.
type Results struct {
	// SelectedTags restricts result matching to these tag dimensions when non-empty.
	SelectedTags []string   `json:"selectedTags"`
	List         ResultList `json:"list"`
	// DefaultID names the result used when nothing matches.
	DefaultID string `json:"defaultId,omitempty"`
}

// ResultList is keyed by Result id.
type ResultList map[string]Result

// Result is one personalized outcome with its tag matching criteria.
type Result struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Tags       map[string][]string `json:"tags"`
	Range      []float64           `json:"range,omitempty"`
	Components json.RawMessage     `json:"components,omitempty"`
}

// Final describes the closing page shown after the result.
type Final struct {
	Mode       string          `json:"mode,omitempty"`
	Components json.RawMessage `json:"components,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

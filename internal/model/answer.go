package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// AnswerValue is the respondent's answer to one quiz. Values is omitted
// from JSON only when nil, so an explicit empty list survives a round trip.
type AnswerValue struct {
	QuizID    string   `json:"quizId"`
	Value     *Scalar  `json:"value,omitempty"`
	Values    []string `json:"values"`
	DwellTime *float64 `json:"dwellTime,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	type wire struct {
		QuizID    string    `json:"quizId"`
		Value     *Scalar   `json:"value,omitempty"`
		Values    *[]string `json:"values,omitempty"`
		DwellTime *float64  `json:"dwellTime,omitempty"`
	}
	w := wire{QuizID: a.QuizID, Value: a.Value, DwellTime: a.DwellTime}
	if a.Values != nil {
		w.Values = &a.Values
	}
	return json.Marshal(w)
}

// Answer is the finished record handed to answer storage.
type Answer struct {
	ID        string                 `json:"id"`
	SurveyID  string                 `json:"surveyId"`
	Answers   map[string]AnswerValue `json:"answers"`
	ResultID  string                 `json:"resultId"`
	Final     FinalInfo              `json:"final"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// FinalInfo holds whatever the closing page collected (contact fields, consent, ...).
type FinalInfo map[string]any

// ErrInvalidScalar is returned when a value is neither a JSON string nor a JSON number.
var ErrInvalidScalar = errors.New("value must be a string or a number")

// Scalar is a string-or-number answer value. Numbers keep their original
// literal so the value re-encodes byte for byte.
type Scalar struct {
	text   string
	number bool
}

// StringValue wraps a string answer.
func StringValue(s string) *Scalar {
	return &Scalar{text: s}
}

// NumberValue wraps a numeric answer.
func NumberValue(f float64) *Scalar {
	return &Scalar{text: strconv.FormatFloat(f, 'f', -1, 64), number: true}
}

// IsNumber reports whether the scalar holds a number.
func (s Scalar) IsNumber() bool { return s.number }

// String returns the string form (the literal for numbers).
func (s Scalar) String() string { return s.text }

// Float returns the numeric value; ok is false for strings.
func (s Scalar) Float() (float64, bool) {
	if !s.number {
		return 0, false
	}
	f, err := strconv.ParseFloat(s.text, 64)
	return f, err == nil
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.number {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidScalar
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar{text: str}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	n, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("%w: got %s", ErrInvalidScalar, data)
	}
	*s = Scalar{text: n.String(), number: true}
	return nil
}

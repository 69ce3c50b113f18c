package websocket

import "github.com/nevenhsu/survey-web-sub001/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionAdvance Action = "advance"
	ActionPick    Action = "pick"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest records the answer to one quiz.
type AnswerRequest struct {
	Action    Action        `json:"action"`
	QuizID    string        `json:"quizId"`
	Value     *model.Scalar `json:"value,omitempty"`
	Values    []string      `json:"values,omitempty"`
	DwellTime *float64      `json:"dwellTime,omitempty"`
}

// PickRequest answers the pending oneInTwo round.
type PickRequest struct {
	Action   Action `json:"action"`
	ChoiceID string `json:"choiceId"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSession   Event = "session"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

// SessionResponse carries the session after a successful action.
type SessionResponse struct {
	Event   Event `json:"event"`
	Session any   `json:"session"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

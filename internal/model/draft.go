package model

import "time"

// AnswerDraft is one in-progress answer queued for durable storage before the
// session is submitted.
type AnswerDraft struct {
	SessionID string      `json:"sessionId"`
	SurveyID  string      `json:"surveyId"`
	QuizID    string      `json:"quizId"`
	Value     AnswerValue `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

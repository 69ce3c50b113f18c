package model

// PutAnswerRequest is the payload for recording an answer to one quiz.
type PutAnswerRequest struct {
	Value     *Scalar  `json:"value"`
	Values    []string `json:"values" binding:"omitempty,max=200,dive,required,slug"`
	DwellTime *float64 `json:"dwellTime" binding:"omitempty,min=0"`
}

// ToAnswerValue converts the payload for quizID.
func (r PutAnswerRequest) ToAnswerValue(quizID string) AnswerValue {
	return AnswerValue{QuizID: quizID, Value: r.Value, Values: r.Values, DwellTime: r.DwellTime}
}

// PickRequest is the payload for choosing one side of a oneInTwo round.
type PickRequest struct {
	ChoiceID string `json:"choiceId" binding:"required,slug"`
}

// CompleteResultRequest moves a session from the result page to the final page.
type CompleteResultRequest struct {
	Final FinalInfo `json:"final" binding:"omitempty,max=50"`
}

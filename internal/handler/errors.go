package handler

import (
	"errors"
	"net/http"

	"github.com/nevenhsu/survey-web-sub001/internal/quizflow"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
	"github.com/nevenhsu/survey-web-sub001/internal/response"
	"github.com/nevenhsu/survey-web-sub001/internal/service"
)

type errMapping struct {
	target error
	status int
	code   response.ErrCode
}

// flowErrors maps service and engine errors to API error codes. Order matters:
// the first match wins.
var flowErrors = []errMapping{
	{service.ErrSurveyNotFound, http.StatusNotFound, response.ErrSurveyNotFound},
	{service.ErrSessionNotFound, http.StatusNotFound, response.ErrSessionNotFound},
	{service.ErrInvalidSurvey, http.StatusInternalServerError, response.ErrSurveyInvalid},

	{quizflow.ErrNoDefaultResult, http.StatusInternalServerError, response.ErrNoDefaultResult},
	{quizflow.ErrEmptySurvey, http.StatusInternalServerError, response.ErrSurveyInvalid},
	{quizflow.ErrUnknownNext, http.StatusInternalServerError, response.ErrSurveyInvalid},
	{quizflow.ErrUnknownQuizType, http.StatusInternalServerError, response.ErrSurveyInvalid},
	{quizflow.ErrSurveyMismatch, http.StatusInternalServerError, response.ErrSurveyInvalid},

	{quizflow.ErrInvalidStep, http.StatusConflict, response.ErrInvalidStep},
	{quizflow.ErrQuizNotFound, http.StatusNotFound, response.ErrQuizNotFound},
	{quizflow.ErrUnknownChoice, http.StatusBadRequest, response.ErrUnknownChoice},
	{quizflow.ErrTooManyValues, http.StatusBadRequest, response.ErrTooManyValues},
	{quizflow.ErrValueOutOfRange, http.StatusBadRequest, response.ErrValueOutOfRange},
	{quizflow.ErrAnswerRequired, http.StatusUnprocessableEntity, response.ErrAnswerRequired},
	{quizflow.ErrNotInRound, http.StatusBadRequest, response.ErrNotInRound},
	{quizflow.ErrRoundsExhausted, http.StatusConflict, response.ErrRoundsExhausted},
	{quizflow.ErrSubmitInProgress, http.StatusConflict, response.ErrSubmitInProgress},

	// Too many concurrent writers on one snapshot.
	{repository.ErrConflict, http.StatusServiceUnavailable, response.ErrUnavailable},
}

// classify returns the status and code for err. Unknown errors get
// fallback with a 500.
func classify(err error, fallback response.ErrCode) (int, response.ErrCode) {
	for _, m := range flowErrors {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, fallback
}

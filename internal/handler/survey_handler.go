package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/response"
	"github.com/nevenhsu/survey-web-sub001/internal/validator"
)

// SurveyReader returns published survey definitions.
type SurveyReader interface {
	Get(ctx context.Context, id string) (*model.Survey, error)
}

// SurveyHandler serves survey definitions to respondents.
type SurveyHandler struct {
	surveys SurveyReader
	log     zerolog.Logger
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(surveys SurveyReader, log zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{
		surveys: surveys,
		log:     log.With().Str("component", "survey_handler").Logger(),
	}
}

// GetSurvey godoc
// GET /api/v1/surveys/:survey_id
// Returns the full definition the client renders quizzes from.
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	surveyID := c.Param("survey_id")
	if !validator.IsSlug(surveyID) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	survey, err := h.surveys.Get(c.Request.Context(), surveyID)
	if err != nil {
		status, code := classify(err, response.ErrInternal)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("survey_id", surveyID).Msg("Failed to load survey")
		}
		response.Fail(c, status, code)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"survey": survey})
}

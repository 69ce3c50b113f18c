package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/response"
	"github.com/nevenhsu/survey-web-sub001/internal/service"
	"github.com/nevenhsu/survey-web-sub001/internal/validator"
)

// SessionFlow drives answer sessions. *service.SessionService implements it.
type SessionFlow interface {
	Start(ctx context.Context, surveyID string) (*service.SessionView, error)
	Get(ctx context.Context, id string) (*service.SessionView, error)
	Answer(ctx context.Context, id, quizID string, value model.AnswerValue) (*service.SessionView, error)
	Advance(ctx context.Context, id string) (*service.SessionView, error)
	Round(ctx context.Context, id string) (*service.RoundView, error)
	Pick(ctx context.Context, id, choiceID string) (*service.SessionView, error)
	CompleteResult(ctx context.Context, id string, final model.FinalInfo) (*service.SessionView, error)
	Submit(ctx context.Context, id string) (*service.SessionView, error)
}

// SessionHandler exposes the answer-session state machine over HTTP.
type SessionHandler struct {
	sessions SessionFlow
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionFlow, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		log:      log.With().Str("component", "session_handler").Logger(),
	}
}

// StartSession godoc
// POST /api/v1/surveys/:survey_id/sessions
// Opens a new answer session positioned on the first quiz.
func (h *SessionHandler) StartSession(c *gin.Context) {
	surveyID := c.Param("survey_id")
	if !validator.IsSlug(surveyID) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessions.Start(c.Request.Context(), surveyID)
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/sessions/:session_id
// Returns the current state of a session (used to resume after a reload).
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	view, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// PutAnswer godoc
// PUT /api/v1/sessions/:session_id/answers/:quiz_id
// Records or replaces the answer to one quiz without moving the pointer.
func (h *SessionHandler) PutAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	quizID := c.Param("quiz_id")
	if !validator.IsSlug(quizID) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.PutAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessions.Answer(c.Request.Context(), id, quizID, req.ToAnswerValue(quizID))
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Advance godoc
// POST /api/v1/sessions/:session_id/advance
// Moves to the next quiz, or resolves the result after the last one.
func (h *SessionHandler) Advance(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	view, err := h.sessions.Advance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// GetRound godoc
// GET /api/v1/sessions/:session_id/round
// Returns the pending comparison of the current oneInTwo quiz.
func (h *SessionHandler) GetRound(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	round, err := h.sessions.Round(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"round": round})
}

// Pick godoc
// POST /api/v1/sessions/:session_id/round/pick
// Chooses one side of the pending oneInTwo round.
func (h *SessionHandler) Pick(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.PickRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessions.Pick(c.Request.Context(), id, req.ChoiceID)
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// CompleteResult godoc
// POST /api/v1/sessions/:session_id/result/complete
// Leaves the result page for the final page.
func (h *SessionHandler) CompleteResult(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.CompleteResultRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	view, err := h.sessions.CompleteResult(c.Request.Context(), id, req.Final)
	if err != nil {
		h.fail(c, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Submit godoc
// POST /api/v1/sessions/:session_id/submit
// Stores the finished answer. Repeating a successful submit is harmless.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	view, err := h.sessions.Submit(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, response.ErrSubmitFailed)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// ─── Helpers ─────────────────────────────────────────────────────────

// sessionID reads and checks the :session_id path parameter, writing the
// error response itself when it is malformed.
func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("session_id")
	if !validator.IsSlug(id) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id, true
}

func (h *SessionHandler) fail(c *gin.Context, err error, fallback response.ErrCode) {
	status, code := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Session operation failed")
	}
	response.Fail(c, status, code)
}

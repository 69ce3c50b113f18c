package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/response"
	"github.com/nevenhsu/survey-web-sub001/internal/service"
	"github.com/nevenhsu/survey-web-sub001/internal/validator"
	ws "github.com/nevenhsu/survey-web-sub001/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams answer-session actions over a WebSocket, so a client can
// answer and advance without a request per step.
type WSHandler struct {
	sessions SessionFlow
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions SessionFlow, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Accepts answer, advance, pick, submit and ping actions. Every successful
// action is answered with the updated session.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	// Reject unknown sessions before upgrading so the client gets a plain HTTP error.
	view, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		status, code := classify(err, response.ErrInternal)
		response.Fail(c, status, code)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("session_id", id).
		Str("survey_id", view.SurveyID).
		Logger()
	wsLog.Info().Msg("Respondent connected")

	ws.WriteTyped(conn, ws.SessionResponse{Event: ws.EventSession, Session: view})

	for {
		raw, err := ws.ReadMessage(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed message")
			continue
		}

		// The upgrade request's context ends with the connection.
		ctx := context.WithoutCancel(c.Request.Context())

		switch env.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, conn, id, raw)
		case ws.ActionAdvance:
			h.reply(conn, wsLog, ws.EventSession)(h.sessions.Advance(ctx, id))
		case ws.ActionPick:
			h.handlePick(ctx, conn, id, raw)
		case ws.ActionSubmit:
			h.reply(conn, wsLog, ws.EventSubmitted)(h.sessions.Submit(ctx, id))
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(env.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, id string, raw []byte) {
	var msg ws.AnswerRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed answer")
		return
	}
	if !validator.IsSlug(msg.QuizID) {
		ws.WriteError(conn, string(response.ErrInvalidID), "invalid quizId")
		return
	}
	for _, v := range msg.Values {
		if !validator.IsSlug(v) {
			ws.WriteError(conn, string(response.ErrInvalidID), "invalid choice id in values")
			return
		}
	}

	value := model.AnswerValue{QuizID: msg.QuizID, Value: msg.Value, Values: msg.Values, DwellTime: msg.DwellTime}
	h.reply(conn, h.log, ws.EventSession)(h.sessions.Answer(ctx, id, msg.QuizID, value))
}

func (h *WSHandler) handlePick(ctx context.Context, conn *websocket.Conn, id string, raw []byte) {
	var msg ws.PickRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed pick")
		return
	}
	if !validator.IsSlug(msg.ChoiceID) {
		ws.WriteError(conn, string(response.ErrInvalidID), "invalid choiceId")
		return
	}
	h.reply(conn, h.log, ws.EventSession)(h.sessions.Pick(ctx, id, msg.ChoiceID))
}

// reply returns a writer for the result of a session operation.
func (h *WSHandler) reply(conn *websocket.Conn, log zerolog.Logger, event ws.Event) func(*service.SessionView, error) {
	return func(view *service.SessionView, err error) {
		if err != nil {
			fallback := response.ErrInternal
			if event == ws.EventSubmitted {
				fallback = response.ErrSubmitFailed
			}
			status, code := classify(err, fallback)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("event", string(event)).Msg("Session action failed")
			}
			ws.WriteError(conn, string(code), response.GetMessage(code))
			return
		}
		ws.WriteTyped(conn, ws.SessionResponse{Event: event, Session: view})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"organquiz/internal/config"
	domain "organquiz/internal/domain/quiz"
	"organquiz/internal/infrastructure/metrics"
	"organquiz/internal/interfaces/httpserver/requests"
	"organquiz/internal/interfaces/httpserver/responses"
	"organquiz/utils/quizid"
)

const sessionCookie = "quiz_session"

// QuizHandler exposes the round endpoints.
type QuizHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewQuizHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "quiz-handler").Logger(),
	}
}

// Question godoc
// @Summary      Start a quiz round
// @Description  Generates a subject image and returns four answer options.
// @Tags         quiz
// @Produce      json
// @Success      200  {object}  responses.QuestionResponse
// @Failure      503  {object}  responses.ErrorResponse
// @Router       /v1/quiz/question [get]
func (h *QuizHandler) Question(c *gin.Context) {
	sessionID := h.sessionID(c)

	round, err := h.service.StartRound(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrPoolExhausted) {
			metrics.RecordRound("pool_exhausted")
			h.log.Error().Err(err).Msg("round generation exhausted the subject pool")
			c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
				Code:  "POOL_EXHAUSTED",
				Error: "image generation is unavailable right now, try again later",
			})
			return
		}
		metrics.RecordRound("error")
		h.log.Error().Err(err).Msg("start round failed")
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{Error: "failed to start a round"})
		return
	}

	metrics.RecordRound("ok")
	c.JSON(http.StatusOK, responses.BuildQuestionResponse(round))
}

// Answer godoc
// @Summary      Check an answer
// @Description  Validates the selected option against the session's round.
// @Tags         quiz
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CheckAnswerRequest  true  "Selected option"
// @Success      200      {object}  responses.AnswerResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/quiz/answer [post]
func (h *QuizHandler) Answer(c *gin.Context) {
	var req requests.CheckAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: err.Error()})
		return
	}

	sessionID := h.sessionID(c)
	verdict, err := h.service.CheckAnswer(c.Request.Context(), sessionID, req.SelectedOption)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveRound) {
			c.JSON(http.StatusBadRequest, responses.ErrorResponse{
				Code:  "NO_ACTIVE_ROUND",
				Error: "no active question, request a new one first",
			})
			return
		}
		h.log.Error().Err(err).Msg("check answer failed")
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{Error: "failed to check answer"})
		return
	}

	if verdict.Correct {
		metrics.RecordAnswer("correct")
	} else {
		metrics.RecordAnswer("incorrect")
	}
	c.JSON(http.StatusOK, responses.BuildAnswerResponse(verdict))
}

// sessionID returns the caller's session id, minting one when the cookie is
// absent or malformed.
func (h *QuizHandler) sessionID(c *gin.Context) string {
	if value, err := c.Cookie(sessionCookie); err == nil && quizid.IsSession(value) {
		return value
	}
	id := quizid.NewSession()
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return id
}

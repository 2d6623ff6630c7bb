package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/response"
	"github.com/stemsi/lms-backend/internal/validator"
)

// QuizHandler handles instructor quiz authoring endpoints.
type QuizHandler struct {
	quizzes QuizManager
	log     zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizzes QuizManager, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes: quizzes,
		log:     log.With().Str("component", "quiz_handler").Logger(),
	}
}

// CreateQuiz godoc
// POST /api/v1/instructor/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizzes.CreateQuiz(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, quiz)
}

// GetQuiz godoc
// GET /api/v1/instructor/quizzes/:id
// Includes answer keys.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.quizzes.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// ListQuizzes godoc
// GET /api/v1/instructor/courses/:course_id/quizzes
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	courseID, ok := uuidParam(c, "course_id")
	if !ok {
		return
	}

	quizzes, err := h.quizzes.ListQuizzes(c.Request.Context(), courseID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, quizzes)
}

// AddQuestion godoc
// POST /api/v1/instructor/quizzes/:id/questions
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizzes.AddQuestion(c.Request.Context(), quizID, &req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}

// GetQuizStats godoc
// GET /api/v1/instructor/quizzes/:id/stats
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.quizzes.GetQuizStats(c.Request.Context(), quizID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/response"
)

// ResultHandler lets instructors browse graded attempts of any student.
type ResultHandler struct {
	grader Grader
	log    zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(grader Grader, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		grader: grader,
		log:    log.With().Str("component", "result_handler").Logger(),
	}
}

// ListResults godoc
// GET /api/v1/instructor/results?student_id=&quiz_id=&course_id=
func (h *ResultHandler) ListResults(c *gin.Context) {
	var filter model.ResultFilter
	if !uuidQuery(c, "student_id", &filter.StudentID) ||
		!uuidQuery(c, "quiz_id", &filter.QuizID) ||
		!uuidQuery(c, "course_id", &filter.CourseID) {
		return
	}

	results, err := h.grader.GetStudentQuizResults(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// GetResult godoc
// GET /api/v1/instructor/results/:id
func (h *ResultHandler) GetResult(c *gin.Context) {
	resultID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	details, err := h.grader.GetQuizResultDetails(c.Request.Context(), resultID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

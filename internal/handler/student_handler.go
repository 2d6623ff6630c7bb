package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/middleware"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/response"
	"github.com/stemsi/lms-backend/internal/service"
	"github.com/stemsi/lms-backend/internal/validator"
)

// StudentHandler serves quiz papers, submissions and a student's own results.
type StudentHandler struct {
	grader  Grader
	quizzes QuizManager
	log     zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(grader Grader, quizzes QuizManager, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		grader:  grader,
		quizzes: quizzes,
		log:     log.With().Str("component", "student_handler").Logger(),
	}
}

// GetQuizPaper godoc
// GET /api/v1/student/quizzes/:quiz_id
func (h *StudentHandler) GetQuizPaper(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	paper, err := h.quizzes.GetQuizPaper(c.Request.Context(), quizID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, paper)
}

// SubmitQuiz godoc
// POST /api/v1/student/quizzes/:quiz_id/submit
// Grades the submission and records it as the student's next attempt.
func (h *StudentHandler) SubmitQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.grader.SubmitQuiz(c.Request.Context(), service.SubmitInput{
		QuizID:           quizID,
		StudentID:        claims.UserID,
		CourseID:         req.CourseID,
		ModuleID:         req.ModuleID,
		Answers:          req.Answers,
		TimeTakenMinutes: req.TimeTakenMinutes,
		StartedAt:        req.StartedAt,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, out.Result, out.Message)
}

// ListMyResults godoc
// GET /api/v1/student/results?quiz_id=&course_id=
func (h *StudentHandler) ListMyResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	filter := model.ResultFilter{StudentID: &claims.UserID}
	if !uuidQuery(c, "quiz_id", &filter.QuizID) || !uuidQuery(c, "course_id", &filter.CourseID) {
		return
	}

	results, err := h.grader.GetStudentQuizResults(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// GetMyResult godoc
// GET /api/v1/student/results/:id
// Results of other students answer 404 so their IDs cannot be probed.
func (h *StudentHandler) GetMyResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	resultID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	details, err := h.grader.GetQuizResultDetails(c.Request.Context(), resultID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if details.Result.StudentID != claims.UserID {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, details)
}

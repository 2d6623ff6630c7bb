package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/middleware"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/response"
	"github.com/stemsi/lms-backend/internal/service"
	"github.com/stemsi/lms-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code   response.ErrCode  `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

// asStudent injects claims the way the JWT middleware does.
func asStudent(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{TokenType: service.TokenTypeStudent, UserID: id})
		c.Next()
	}
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func studentRouter(studentID uuid.UUID, g *stubGrader, q *stubQuizzes) *gin.Engine {
	h := NewStudentHandler(g, q, zerolog.Nop())
	r := gin.New()
	r.Use(asStudent(studentID))
	r.GET("/quizzes/:quiz_id", h.GetQuizPaper)
	r.POST("/quizzes/:quiz_id/submit", h.SubmitQuiz)
	r.GET("/results", h.ListMyResults)
	r.GET("/results/:id", h.GetMyResult)
	return r
}

func validSubmission() map[string]interface{} {
	return map[string]interface{}{
		"course_id": uuid.NewString(),
		"module_id": uuid.NewString(),
		"answers": []map[string]interface{}{
			{"question_id": uuid.NewString(), "selected_option_id": uuid.NewString()},
			{"question_id": uuid.NewString(), "text_answer": "Paris"},
		},
		"time_taken_minutes": 7,
	}
}

func TestSubmitQuiz_Success(t *testing.T) {
	studentID, quizID := uuid.New(), uuid.New()
	g := &stubGrader{out: &service.SubmitOutput{
		Result:  &model.GradingResult{ID: uuid.New(), QuizID: quizID, StudentID: studentID, TotalScore: 5, MaxScore: 15, Percentage: 33.33, AttemptNumber: 1},
		Message: service.MessageFailed,
	}}
	r := studentRouter(studentID, g, &stubQuizzes{})

	w, env := call(t, r, http.MethodPost, "/quizzes/"+quizID.String()+"/submit", validSubmission())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, service.MessageFailed, env.Message)

	var res model.GradingResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 33.33, res.Percentage)

	require.Len(t, g.submits, 1)
	assert.Equal(t, quizID, g.submits[0].QuizID)
	assert.Equal(t, studentID, g.submits[0].StudentID, "student identity comes from the token")
	assert.Len(t, g.submits[0].Answers, 2)
	assert.Equal(t, 7, g.submits[0].TimeTakenMinutes)
}

func TestSubmitQuiz_Errors(t *testing.T) {
	quizID := uuid.New().String()

	cases := []struct {
		name   string
		path   string
		body   interface{}
		err    error
		status int
		code   response.ErrCode
	}{
		{"bad quiz id", "/quizzes/nope/submit", validSubmission(), nil, http.StatusBadRequest, response.ErrInvalidID},
		{"malformed body", "/quizzes/" + quizID + "/submit", `{"answers": [`, nil, http.StatusBadRequest, response.ErrValidation},
		{"missing answers", "/quizzes/" + quizID + "/submit", map[string]interface{}{"course_id": uuid.NewString(), "module_id": uuid.NewString()}, nil, http.StatusBadRequest, response.ErrValidation},
		{"service validation", "/quizzes/" + quizID + "/submit", validSubmission(), &service.ValidationError{Fields: map[string]string{"answers[0].question_id": "duplicate"}}, http.StatusBadRequest, response.ErrValidation},
		{"unknown quiz", "/quizzes/" + quizID + "/submit", validSubmission(), &service.NotFoundError{Resource: "quiz"}, http.StatusNotFound, response.ErrNotFound},
		{"attempt limit", "/quizzes/" + quizID + "/submit", validSubmission(), &service.AttemptLimitExceededError{Allowed: 3}, http.StatusForbidden, response.ErrAttemptLimitExceeded},
		{"store failure", "/quizzes/" + quizID + "/submit", validSubmission(), &service.InternalError{Op: "insert result", Err: errors.New("conn reset")}, http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := studentRouter(uuid.New(), &stubGrader{err: tc.err}, &stubQuizzes{})
			w, env := call(t, r, http.MethodPost, tc.path, tc.body)

			assert.Equal(t, tc.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.NotContains(t, w.Body.String(), "conn reset")
		})
	}
}

func TestSubmitQuiz_AttemptLimitMessage(t *testing.T) {
	r := studentRouter(uuid.New(), &stubGrader{err: &service.AttemptLimitExceededError{Allowed: 3}}, &stubQuizzes{})
	_, env := call(t, r, http.MethodPost, "/quizzes/"+uuid.NewString()+"/submit", validSubmission())
	assert.Contains(t, env.Message, "(3)")
}

func TestListMyResults_ScopedToCaller(t *testing.T) {
	studentID, quizID := uuid.New(), uuid.New()
	g := &stubGrader{results: []model.GradingResult{}}
	r := studentRouter(studentID, g, &stubQuizzes{})

	w, env := call(t, r, http.MethodGet, "/results?quiz_id="+quizID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	require.NotNil(t, g.filter.StudentID)
	assert.Equal(t, studentID, *g.filter.StudentID)
	require.NotNil(t, g.filter.QuizID)
	assert.Equal(t, quizID, *g.filter.QuizID)
	assert.Nil(t, g.filter.CourseID)

	w, env = call(t, r, http.MethodGet, "/results?course_id=bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "course_id")
}

func TestGetMyResult_Ownership(t *testing.T) {
	studentID := uuid.New()
	mine := &model.ResultDetails{Result: &model.GradingResult{ID: uuid.New(), StudentID: studentID}, Reviews: []model.QuestionReview{}}
	theirs := &model.ResultDetails{Result: &model.GradingResult{ID: uuid.New(), StudentID: uuid.New()}}

	w, _ := call(t, studentRouter(studentID, &stubGrader{details: mine}, &stubQuizzes{}), http.MethodGet, "/results/"+mine.Result.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := call(t, studentRouter(studentID, &stubGrader{details: theirs}, &stubQuizzes{}), http.MethodGet, "/results/"+theirs.Result.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)
}

func TestGetQuizPaper(t *testing.T) {
	quizID := uuid.New()
	paper := &model.QuizPaper{QuizID: quizID, Title: "Capitals", Questions: []model.QuestionForStudent{}}
	r := studentRouter(uuid.New(), &stubGrader{}, &stubQuizzes{paper: paper})

	w, env := call(t, r, http.MethodGet, "/quizzes/"+quizID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "is_correct")
}

func quizRouter(q *stubQuizzes) *gin.Engine {
	h := NewQuizHandler(q, zerolog.Nop())
	r := gin.New()
	r.POST("/quizzes", h.CreateQuiz)
	r.GET("/quizzes/:id", h.GetQuiz)
	r.GET("/courses/:course_id/quizzes", h.ListQuizzes)
	r.POST("/quizzes/:id/questions", h.AddQuestion)
	r.GET("/quizzes/:id/stats", h.GetQuizStats)
	return r
}

func TestQuizHandler(t *testing.T) {
	quiz := &model.Quiz{ID: uuid.New(), Title: "Capitals"}
	r := quizRouter(&stubQuizzes{quiz: quiz, detail: &model.QuizDetail{Quiz: quiz, Questions: []model.Question{}}})

	w, _ := call(t, r, http.MethodPost, "/quizzes", map[string]interface{}{
		"course_id": uuid.NewString(), "module_id": uuid.NewString(),
		"title": "Capitals", "pass_percentage": 60, "time_limit_minutes": 10, "attempts_allowed": 2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env := call(t, r, http.MethodPost, "/quizzes", map[string]interface{}{"title": "x", "pass_percentage": 140})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "pass_percentage")
	assert.Contains(t, env.Error.Fields, "attempts_allowed")

	w, _ = call(t, r, http.MethodGet, "/quizzes/"+quiz.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, http.MethodGet, "/courses/"+uuid.NewString()+"/quizzes", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, http.MethodPost, "/quizzes/"+quiz.ID.String()+"/questions", map[string]interface{}{
		"question_text": "Capital of France?", "question_type": "fill_blank", "score": 2,
		"options": []map[string]interface{}{{"text": "Paris"}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = call(t, r, http.MethodPost, "/quizzes/"+quiz.ID.String()+"/questions", map[string]interface{}{
		"question_text": "Essay", "question_type": "essay", "score": 2,
		"options": []map[string]interface{}{{"text": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "question_type")

	w, _ = call(t, r, http.MethodGet, "/quizzes/"+quiz.ID.String()+"/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuizHandler_NotFound(t *testing.T) {
	r := quizRouter(&stubQuizzes{err: &service.NotFoundError{Resource: "quiz"}})
	w, env := call(t, r, http.MethodGet, "/quizzes/"+uuid.NewString()+"/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)
}

func TestResultHandler(t *testing.T) {
	studentID := uuid.New()
	g := &stubGrader{results: []model.GradingResult{{ID: uuid.New(), StudentID: studentID}}, details: &model.ResultDetails{Result: &model.GradingResult{StudentID: uuid.New()}}}
	h := NewResultHandler(g, zerolog.Nop())
	r := gin.New()
	r.GET("/results", h.ListResults)
	r.GET("/results/:id", h.GetResult)

	w, _ := call(t, r, http.MethodGet, "/results?student_id="+studentID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, g.filter.StudentID)
	assert.Equal(t, studentID, *g.filter.StudentID)

	w, _ = call(t, r, http.MethodGet, "/results/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, w.Code, "instructors may read any student's result")

	w, _ = call(t, r, http.MethodGet, "/results/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemHandler(t *testing.T) {
	up := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("refused") }
	depth := func(ctx context.Context) (int64, error) { return 4, nil }

	r := gin.New()
	healthy := NewSystemHandler(map[string]Pinger{"postgres": up, "redis": up}, depth, zerolog.Nop())
	broken := NewSystemHandler(map[string]Pinger{"postgres": up, "redis": down}, nil, zerolog.Nop())
	r.GET("/health", healthy.Health)
	r.GET("/ready", healthy.Ready)
	r.GET("/broken", broken.Ready)

	w, _ := call(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := call(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"stats_queue_depth":4`)

	w, env = call(t, r, http.MethodGet, "/broken", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, string(env.Data), `"redis":"down"`)
}

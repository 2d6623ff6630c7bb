package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func bindBody(body string) map[string]string {
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.SubmitQuizRequest
	return Bind(c, &req)
}

func TestBind_Valid(t *testing.T) {
	fields := bindBody(`{
		"course_id": "6f1c1f0e-2f7a-4c1e-9a59-0d8f5b6a1c11",
		"module_id": "0b6f3a4e-8d1c-4e0b-9f5e-2a7d9c3b4e22",
		"answers": [{"question_id": "a3c1d2e4-5f60-4718-92ab-3c4d5e6f7a80", "selected_option_id": "x"}],
		"time_taken_minutes": 4
	}`)
	assert.Nil(t, fields)
}

func TestBind_EmptyAnswersAccepted(t *testing.T) {
	fields := bindBody(`{
		"course_id": "6f1c1f0e-2f7a-4c1e-9a59-0d8f5b6a1c11",
		"module_id": "0b6f3a4e-8d1c-4e0b-9f5e-2a7d9c3b4e22",
		"answers": []
	}`)
	assert.Nil(t, fields)
}

func TestBind_MissingFields(t *testing.T) {
	fields := bindBody(`{"answers": null, "time_taken_minutes": -1}`)

	assert.Contains(t, fields, "course_id")
	assert.Contains(t, fields, "module_id")
	assert.Contains(t, fields, "answers")
	assert.Contains(t, fields, "time_taken_minutes")
}

func TestBind_NestedFieldPath(t *testing.T) {
	fields := bindBody(`{
		"course_id": "6f1c1f0e-2f7a-4c1e-9a59-0d8f5b6a1c11",
		"module_id": "0b6f3a4e-8d1c-4e0b-9f5e-2a7d9c3b4e22",
		"answers": [{"selected_option_id": "x"}]
	}`)
	assert.Contains(t, fields, "answers[0].question_id")
}

func TestBind_MalformedJSON(t *testing.T) {
	fields := bindBody(`{"course_id": `)
	assert.Contains(t, fields, "detail")
}

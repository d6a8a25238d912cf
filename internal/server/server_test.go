package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/exam"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testQuestions(n int) []bank.Question {
	qs := make([]bank.Question, n)
	for i := range qs {
		qs[i] = bank.Question{
			Question:      fmt.Sprintf("question %d", i),
			Options:       map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
			CorrectAnswer: "A",
			Difficulty:    bank.Medium,
		}
	}
	return qs
}

func newTestRouter(n int) *gin.Engine {
	engine := exam.New(testQuestions(n), nil)
	return New(engine, nil).Router()
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(5)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNewExamReturnsThirtyQuestions(t *testing.T) {
	router := newTestRouter(60)

	w := postJSON(t, router, "/api/exam", map[string]string{"level": "medium"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Exam []bank.Question `json:"exam"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Exam, exam.DefaultSize)
}

func TestNewExamEmptyBank(t *testing.T) {
	router := newTestRouter(0)

	w := postJSON(t, router, "/api/exam", map[string]string{"level": "easy"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSubmitGradesExam(t *testing.T) {
	router := newTestRouter(60)
	questions := testQuestions(3)

	w := postJSON(t, router, "/api/submit", map[string]any{
		"exam":    questions,
		"answers": []string{"A", "B", "A"},
		"level":   "medium",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Score     int               `json:"score"`
		NextLevel bank.Difficulty   `json:"next_level"`
		Details   []exam.ItemResult `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Score)
	assert.Equal(t, bank.Easy, resp.NextLevel) // 2 <= 18
	require.Len(t, resp.Details, 3)
	assert.False(t, resp.Details[1].Correct)
	assert.NotEmpty(t, resp.Details[1].Explanation)
}

func TestSubmitLengthMismatch(t *testing.T) {
	router := newTestRouter(60)

	w := postJSON(t, router, "/api/submit", map[string]any{
		"exam":    testQuestions(3),
		"answers": []string{"A"},
		"level":   "medium",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitMalformedBody(t *testing.T) {
	router := newTestRouter(60)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOversizedPayloadRejected(t *testing.T) {
	router := newTestRouter(5)

	big := bytes.Repeat([]byte("x"), maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

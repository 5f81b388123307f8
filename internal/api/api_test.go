package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/material"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/tutor"
	"github.com/abhisek/studyloop/internal/weakness"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mock *llm.MockProvider) *httptest.Server {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name), store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tut := tutor.New(tutor.Deps{
		Provider:    mock,
		Performance: s.PerformanceRepo(),
		Sessions:    session.NewMemoryStore(time.Hour),
		Chunker:     material.NewChunker(material.EstimateCounter, material.DefaultMaxTokens, nil),
		Rand:        rand.New(rand.NewPCG(3, 3)),
		Now:         func() time.Time { return testNow },
	})
	srv := httptest.NewServer(NewRouter(NewHandler(tut, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func digestResponse() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{"concepts":["gradient descent"],"key_points":["Steps follow the negative gradient."],"difficulty_level":"intermediate"}`)}
}

func mcResponse(i int) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(fmt.Sprintf(`{
		"question": "Which direction does step %d move?",
		"options": ["Downhill", "Uphill", "Sideways", "Nowhere"],
		"correct_answer": "Downhill",
		"explanation": "Descent follows the negative gradient.",
		"tags": ["gradient descent"]
	}`, i))}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/health/", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStudyLoop(t *testing.T) {
	mock := llm.NewMockProvider(digestResponse(), mcResponse(1), mcResponse(2))
	srv := newTestServer(t, mock)

	resp := postJSON(t, srv.URL+"/api/materials", map[string]string{"text": material.SampleText})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mat materialResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mat))
	assert.NotEmpty(t, mat.SessionID)
	assert.Equal(t, []string{"gradient descent"}, mat.Concepts)

	resp = postJSON(t, srv.URL+"/api/questions", map[string]any{"session_id": mat.SessionID, "count": 2, "mix": "easy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var qs struct {
		Questions []*questiongen.Question `json:"questions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&qs))
	require.Len(t, qs.Questions, 2)
	assert.Equal(t, questiongen.TypeMultipleChoice, qs.Questions[0].Type())

	resp = postJSON(t, srv.URL+"/api/answers", answerRequest{UserID: "ana", QuestionID: qs.Questions[0].ID, Answer: "Uphill"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sub tutor.Submission
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sub))
	assert.False(t, sub.Result.IsCorrect)

	var stats store.UserStats
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/users/ana/stats", &stats))
	assert.Equal(t, 1, stats.TotalAttempts)

	var report weakness.Report
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/users/ana/weaknesses?days=7", &report))
	require.Len(t, report.Weaknesses, 1)
	assert.Equal(t, "gradient descent", report.Weaknesses[0].Tag)

	var wrong []store.WrongQuestion
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/users/ana/wrong-questions?limit=5&tag=gradient+descent", &wrong))
	assert.Len(t, wrong, 1)

	var plan tutor.PlanResult
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/users/ana/plan", &plan))
	assert.Equal(t, tutor.PlanReady, plan.Status)
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"empty material", "/api/materials", map[string]string{"text": "  "}, http.StatusBadRequest},
		{"unknown field", "/api/materials", map[string]string{"path": "/etc/passwd"}, http.StatusBadRequest},
		{"no session", "/api/questions", map[string]any{"count": 1}, http.StatusNotFound},
		{"bad type", "/api/questions", map[string]any{"types": []string{"essay"}}, http.StatusBadRequest},
		{"bad mix", "/api/questions", map[string]any{"mix": "brutal"}, http.StatusBadRequest},
		{"unknown question", "/api/answers", answerRequest{UserID: "ana", QuestionID: "nope", Answer: "x"}, http.StatusNotFound},
		{"missing user", "/api/answers", answerRequest{QuestionID: "nope"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			var e errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
		})
	}

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/users/ana/weaknesses?days=-1", nil))
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var (
		events []sseEvent
		cur    sseEvent
	)
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, cur)
			cur = sseEvent{}
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func TestStreamQuestions(t *testing.T) {
	mock := llm.NewMockProvider(digestResponse(), mcResponse(1))
	srv := newTestServer(t, mock)

	resp := postJSON(t, srv.URL+"/api/materials", map[string]string{"text": material.SampleText})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/questions/stream", map[string]any{"count": 1, "types": []string{"multiple_choice"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp)
	require.GreaterOrEqual(t, len(events), 4)
	assert.Equal(t, eventStart, events[0].name)
	assert.JSONEq(t, `{"index":1,"total":1}`, events[0].data)
	for _, ev := range events[1 : len(events)-2] {
		assert.Equal(t, eventDelta, ev.name)
	}
	question := events[len(events)-2]
	assert.Equal(t, eventQuestion, question.name)
	var q questiongen.Question
	require.NoError(t, json.Unmarshal([]byte(question.data), &q))
	assert.Equal(t, "Downhill", q.CorrectAnswer)
	assert.Equal(t, eventDone, events[len(events)-1].name)
	assert.JSONEq(t, `{"count":1}`, events[len(events)-1].data)
}

func TestStreamQuestions_Error(t *testing.T) {
	mock := llm.NewMockProvider(digestResponse(), llm.MockResponse{Content: json.RawMessage(`{"question": "broken"}`)})
	srv := newTestServer(t, mock)

	resp := postJSON(t, srv.URL+"/api/materials", map[string]string{"text": material.SampleText})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/questions/stream", map[string]any{"count": 1, "types": []string{"multiple_choice"}})
	events := readEvents(t, resp)
	require.NotEmpty(t, events)
	assert.Equal(t, eventError, events[len(events)-1].name)
}

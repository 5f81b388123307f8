package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/studyloop/internal/grading"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/tutor"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, tutor.ErrQuestionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tutor.ErrEmptyMaterial), errors.Is(err, questiongen.ErrNoChunks), errors.Is(err, grading.ErrUnsupportedQuestion):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// materialRequest carries inline text only; the server never reads paths
// supplied by clients.
type materialRequest struct {
	Text string `json:"text"`
}

type materialResponse struct {
	SessionID string   `json:"session_id"`
	Chunks    int      `json:"chunks"`
	Concepts  []string `json:"concepts"`
}

func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	s, err := h.tutor.ProcessMaterial(r.Context(), tutor.Material{Text: req.Text})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := materialResponse{SessionID: s.ID, Chunks: len(s.Chunks), Concepts: []string{}}
	if s.Digest != nil && s.Digest.Concepts != nil {
		resp.Concepts = s.Digest.Concepts
	}
	writeJSON(w, http.StatusCreated, resp)
}

type generateRequest struct {
	SessionID string   `json:"session_id"`
	Count     int      `json:"count"`
	Types     []string `json:"types"`
	Mix       string   `json:"mix"`
}

func (req generateRequest) toTutor() (tutor.GenerateRequest, error) {
	mix, err := tutor.ParseMix(req.Mix)
	if err != nil {
		return tutor.GenerateRequest{}, err
	}
	out := tutor.GenerateRequest{SessionID: req.SessionID, Count: req.Count, Mix: mix}
	for _, s := range req.Types {
		t, err := questiongen.ParseType(s)
		if err != nil {
			return tutor.GenerateRequest{}, err
		}
		out.Types = append(out.Types, t)
	}
	if out.Count > 20 {
		return tutor.GenerateRequest{}, fmt.Errorf("count must be at most 20")
	}
	return out, nil
}

type questionsResponse struct {
	Questions []*questiongen.Question `json:"questions"`
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decode(r, &body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	req, err := body.toTutor()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	questions, err := h.tutor.GenerateQuestions(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if questions == nil {
		questions = []*questiongen.Question{}
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

type answerRequest struct {
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" || req.QuestionID == "" {
		badRequest(w, "user_id and question_id are required")
		return
	}

	sub, err := h.tutor.SubmitByID(r.Context(), req.UserID, req.QuestionID, req.Answer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tutor.Statistics(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) WrongQuestions(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	wrong, err := h.tutor.WrongQuestions(r.Context(), chi.URLParam(r, "userID"), limit, r.URL.Query()["tag"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wrong)
}

func (h *Handler) Weaknesses(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	report, err := h.tutor.Weaknesses(r.Context(), chi.URLParam(r, "userID"), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) TargetedPractice(w http.ResponseWriter, r *http.Request) {
	questions, err := h.tutor.TargetedPractice(r.Context(), chi.URLParam(r, "userID"), r.URL.Query().Get("session_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if questions == nil {
		questions = []*questiongen.Question{}
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

func (h *Handler) StudyPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.tutor.StudyPlan(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

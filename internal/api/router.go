// Package api exposes the study loop over HTTP.
package api

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/tutor"
	"github.com/abhisek/studyloop/internal/weakness"
)

// Tutor is the part of tutor.Tutor the API serves.
type Tutor interface {
	ProcessMaterial(ctx context.Context, m tutor.Material) (*session.Session, error)
	GenerateQuestions(ctx context.Context, req tutor.GenerateRequest) ([]*questiongen.Question, error)
	StreamQuestions(ctx context.Context, req tutor.GenerateRequest) iter.Seq2[questiongen.Event, error]
	SubmitByID(ctx context.Context, userID, questionID, answer string) (*tutor.Submission, error)
	WrongQuestions(ctx context.Context, userID string, limit int, tags []string) ([]store.WrongQuestion, error)
	Statistics(ctx context.Context, userID string) (*store.UserStats, error)
	Weaknesses(ctx context.Context, userID string, windowDays int) (*weakness.Report, error)
	TargetedPractice(ctx context.Context, userID, sessionID string) ([]*questiongen.Question, error)
	StudyPlan(ctx context.Context, userID string) (*tutor.PlanResult, error)
}

// Handler serves the API.
type Handler struct {
	tutor Tutor
	log   *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(t Tutor, log *logger.Logger) *Handler {
	return &Handler{tutor: t, log: logger.OrNop(log).With("service", "api")}
}

// NewRouter mounts every route under /api.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/materials", h.CreateMaterial)
		r.Post("/questions", h.GenerateQuestions)
		r.Post("/questions/stream", h.StreamQuestions)
		r.Post("/answers", h.SubmitAnswer)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/stats", h.Statistics)
			r.Get("/wrong-questions", h.WrongQuestions)
			r.Get("/weaknesses", h.Weaknesses)
			r.Get("/practice", h.TargetedPractice)
			r.Get("/plan", h.StudyPlan)
		})
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		r = r.WithContext(llm.WithRequestID(r.Context(), middleware.GetReqID(r.Context())))
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

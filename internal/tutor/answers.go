package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studyloop/internal/grading"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/weakness"
)

// Submission is a graded and recorded answer.
type Submission struct {
	AttemptID int64                 `json:"attempt_id"`
	Question  *questiongen.Question `json:"question"`
	Result    *grading.Result       `json:"result"`
}

// Submit grades answer to q and records the attempt for userID.
func (t *Tutor) Submit(ctx context.Context, userID string, q *questiongen.Question, answer string) (*Submission, error) {
	res, err := t.evaluator.Evaluate(ctx, q, answer)
	if err != nil {
		return nil, err
	}

	id, err := t.perf.RecordAttempt(ctx, attemptRecord(userID, q, answer, res, t.now()))
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	t.log.Debug("answer recorded", "user_id", userID, "question_id", q.ID, "correct", res.IsCorrect, "score", res.Score)
	return &Submission{AttemptID: id, Question: q, Result: res}, nil
}

// SubmitByID is Submit for a question generated earlier by this Tutor.
func (t *Tutor) SubmitByID(ctx context.Context, userID, questionID, answer string) (*Submission, error) {
	q, err := t.Question(questionID)
	if err != nil {
		return nil, err
	}
	return t.Submit(ctx, userID, q, answer)
}

func attemptRecord(userID string, q *questiongen.Question, answer string, res *grading.Result, now time.Time) store.AttemptRecord {
	return store.AttemptRecord{
		UserID:               userID,
		QuestionID:           q.ID,
		QuestionText:         q.Content,
		QuestionType:         string(q.Type()),
		UserAnswer:           answer,
		CorrectAnswer:        q.CorrectAnswer,
		IsCorrect:            res.IsCorrect,
		Score:                res.Score,
		Tags:                 q.Tags,
		Difficulty:           string(q.Difficulty),
		Feedback:             res.Feedback,
		Mistakes:             res.Mistakes,
		Explanation:          q.Explanation,
		DetailedExplanation:  res.DetailedExplanation,
		SuggestedImprovement: res.SuggestedImprovement,
		SourceExcerpt:        q.SourceChunks,
		Timestamp:            now,
	}
}

// WrongQuestions lists the user's unmastered wrong questions.
func (t *Tutor) WrongQuestions(ctx context.Context, userID string, limit int, tags []string) ([]store.WrongQuestion, error) {
	return t.perf.WrongQuestions(ctx, userID, store.WrongQuery{Limit: limit, Tags: tags})
}

// Statistics returns the user's statistics view.
func (t *Tutor) Statistics(ctx context.Context, userID string) (*store.UserStats, error) {
	return t.perf.UserStatistics(ctx, userID)
}

// Weaknesses analyzes the user's attempts in the trailing windowDays.
func (t *Tutor) Weaknesses(ctx context.Context, userID string, windowDays int) (*weakness.Report, error) {
	return t.analyzer.Analyze(ctx, userID, windowDays)
}

// TargetedPractice picks cached questions that hit the user's weakest
// tags. Without weaknesses it generates a few fresh questions from the
// session instead.
func (t *Tutor) TargetedPractice(ctx context.Context, userID, sessionID string) ([]*questiongen.Question, error) {
	report, err := t.Weaknesses(ctx, userID, weakness.DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	if len(report.Weaknesses) == 0 {
		return t.GenerateQuestions(ctx, GenerateRequest{SessionID: sessionID, Count: practiceCount})
	}
	return weakness.Targeted(report.Weaknesses, t.cache.All()), nil
}

// PlanStatus tells whether a study plan was produced.
type PlanStatus string

const (
	PlanReady        PlanStatus = "ok"
	PlanNoWeaknesses PlanStatus = "no_weaknesses"
)

// PlanResult wraps a study plan with its status.
type PlanResult struct {
	Status  PlanStatus     `json:"status"`
	Message string         `json:"message,omitempty"`
	Plan    *weakness.Plan `json:"plan,omitempty"`
}

// StudyPlan builds a study plan from the user's current weaknesses.
func (t *Tutor) StudyPlan(ctx context.Context, userID string) (*PlanResult, error) {
	report, err := t.Weaknesses(ctx, userID, weakness.DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	if len(report.Weaknesses) == 0 {
		return &PlanResult{Status: PlanNoWeaknesses, Message: "Nothing needs improving right now."}, nil
	}
	return &PlanResult{Status: PlanReady, Plan: weakness.StudyPlan(report.Weaknesses)}, nil
}

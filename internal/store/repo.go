package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match when set
}

// AttemptRecord is one graded answer. Records are append-only.
type AttemptRecord struct {
	ID                   int64
	UserID               string
	QuestionID           string
	QuestionText         string
	QuestionType         string
	UserAnswer           string
	CorrectAnswer        string
	IsCorrect            bool
	Score                float64
	Tags                 []string
	Difficulty           string
	Feedback             string
	Mistakes             []string
	Explanation          string
	DetailedExplanation  string
	SuggestedImprovement string
	SourceExcerpt        []string
	Timestamp            time.Time
}

// WrongQuestion is a ledger entry for a question the user answered
// incorrectly at least once. The snapshot fields are written on first
// insert and never changed afterwards.
type WrongQuestion struct {
	UserID               string    `json:"user_id"`
	QuestionID           string    `json:"question_id"`
	QuestionText         string    `json:"question_text"`
	QuestionType         string    `json:"question_type"`
	UserAnswer           string    `json:"user_answer"`
	CorrectAnswer        string    `json:"correct_answer"`
	Mistakes             []string  `json:"mistakes"`
	Difficulty           string    `json:"difficulty"`
	Tags                 []string  `json:"tags"`
	DetailedExplanation  string    `json:"detailed_explanation"`
	SuggestedImprovement string    `json:"suggested_improvement"`
	FirstWrongAt         time.Time `json:"first_wrong_at"`
	LastWrongAt          time.Time `json:"last_wrong_at"`
	WrongCount           int       `json:"wrong_count"`
	ReviewCount          int       `json:"review_count"`
	Mastered             bool      `json:"mastered"`
}

// TagProgress is the running per-(user, tag) counter.
type TagProgress struct {
	UserID          string
	Tag             string
	TotalAttempts   int
	CorrectAttempts int
	FirstAttempt    time.Time
	LastAttempt     time.Time
}

// Accuracy is derived on read; it is never persisted.
func (p TagProgress) Accuracy() float64 {
	return ratio(p.CorrectAttempts, p.TotalAttempts)
}

// TagStat aggregates attempts sharing a tag.
type TagStat struct {
	Tag      string  `json:"tag"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// DifficultyStat aggregates attempts at one difficulty.
type DifficultyStat struct {
	Difficulty string  `json:"difficulty"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Accuracy   float64 `json:"accuracy"`
}

// UserStats is the statistics view for one user.
type UserStats struct {
	UserID          string           `json:"user_id"`
	TotalAttempts   int              `json:"total_attempts"`
	CorrectAttempts int              `json:"correct_attempts"`
	OverallAccuracy float64          `json:"overall_accuracy"`
	ByDifficulty    []DifficultyStat `json:"by_difficulty"`
	TopTags         []TagStat        `json:"top_tags"`
	UnmasteredWrong int              `json:"unmastered_wrong"`
}

// AttemptFilter narrows CountAttempts. Zero fields are ignored.
type AttemptFilter struct {
	UserID     string
	Since      time.Time
	Correct    *bool
	Difficulty string
}

// WrongQuery narrows WrongQuestions.
type WrongQuery struct {
	Limit int      // 0 means DefaultWrongLimit
	Tags  []string // entries sharing any of these tags
}

// DefaultWrongLimit caps WrongQuestions when no limit is given.
const DefaultWrongLimit = 20

// DefaultTopTags caps the tag aggregate.
const DefaultTopTags = 10

// PerformanceRepo persists attempts and the views derived from them.
type PerformanceRepo interface {
	// RecordAttempt appends rec, upserts the wrong-question ledger when
	// the attempt is incorrect and bumps tag progress, atomically.
	RecordAttempt(ctx context.Context, rec AttemptRecord) (int64, error)

	// InsertAttempt appends rec to the attempt log.
	InsertAttempt(ctx context.Context, rec AttemptRecord) (int64, error)

	// UpsertWrongQuestion inserts a ledger entry keyed by
	// (user, question) or, if present, bumps its counter and last-seen time.
	UpsertWrongQuestion(ctx context.Context, rec AttemptRecord) error

	// IncrementTagProgress bumps counters for the first three non-blank
	// tags ("general" when none).
	IncrementTagProgress(ctx context.Context, userID string, tags []string, correct bool, at time.Time) error

	// CountAttempts counts attempts matching f.
	CountAttempts(ctx context.Context, f AttemptFilter) (int, error)

	// TagStats aggregates attempts per tag, most-attempted first.
	TagStats(ctx context.Context, userID string, limit int) ([]TagStat, error)

	// AttemptsSince returns attempts at or after since, oldest first.
	AttemptsSince(ctx context.Context, userID string, since time.Time) ([]AttemptRecord, error)

	// WrongQuestions lists unmastered ledger entries, newest failure first.
	WrongQuestions(ctx context.Context, userID string, q WrongQuery) ([]WrongQuestion, error)

	// TagProgress lists all tag counters for a user.
	TagProgress(ctx context.Context, userID string) ([]TagProgress, error)

	// UserStatistics assembles the statistics view.
	UserStatistics(ctx context.Context, userID string) (*UserStats, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Streamed     bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates events by purpose or model.
type LLMUsage struct {
	Purpose      string `json:"purpose"`
	Model        string `json:"model"`
	Calls        int    `json:"calls"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
	Failures     int    `json:"failures"`
}

// LLMEventWriter is the write side used by the LLM logging middleware.
type LLMEventWriter interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventRepo provides append and query access to LLM audit events.
type EventRepo interface {
	LLMEventWriter

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

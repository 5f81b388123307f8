// Package weakness turns a user's graded attempts into tag-level weaknesses,
// a short-window trend, recommendations and a study plan.
package weakness

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/abhisek/studyloop/internal/store"
)

const (
	// DefaultWindowDays is the trailing window Analyze reads.
	DefaultWindowDays = 30

	// Threshold is the accuracy below which a tag is a weakness.
	Threshold = 0.70

	maxErrorSamples = 5
	topWeaknesses   = 3
)

// Status distinguishes "never attempted" from a real report.
type Status string

const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
)

// AttemptReader is the slice of the performance store the analyzer needs.
type AttemptReader interface {
	AttemptsSince(ctx context.Context, userID string, since time.Time) ([]store.AttemptRecord, error)
}

// Report is the weakness analysis for one user.
type Report struct {
	Status          Status     `json:"status"`
	Message         string     `json:"message,omitempty"`
	UserID          string     `json:"user_id"`
	WindowDays      int        `json:"window_days"`
	TotalAttempts   int        `json:"total_attempts"`
	OverallAccuracy float64    `json:"overall_accuracy"`
	Weaknesses      []Weakness `json:"weaknesses"`
	Recommendations []string   `json:"recommendations"`
	Trend           Trend      `json:"trend"`
}

// Weakness is a tag whose accuracy is below Threshold. Accuracy is a
// percentage rounded to one decimal.
type Weakness struct {
	Tag            string        `json:"tag"`
	Accuracy       float64       `json:"accuracy"`
	TotalAttempts  int           `json:"total_attempts"`
	ErrorQuestions []ErrorSample `json:"error_questions"`
}

// ErrorSample is an incorrect attempt kept for review.
type ErrorSample struct {
	QuestionID    string    `json:"question_id"`
	Question      string    `json:"question"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	Timestamp     time.Time `json:"timestamp"`
}

// Analyzer reads attempts and builds reports.
type Analyzer struct {
	repo AttemptReader
	now  func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used to compute the window start.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an Analyzer over repo.
func NewAnalyzer(repo AttemptReader, opts ...Option) *Analyzer {
	a := &Analyzer{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze reports on the user's attempts in the trailing windowDays.
// windowDays <= 0 uses DefaultWindowDays.
func (a *Analyzer) Analyze(ctx context.Context, userID string, windowDays int) (*Report, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	since := a.now().AddDate(0, 0, -windowDays)

	records, err := a.repo.AttemptsSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}

	report := &Report{UserID: userID, WindowDays: windowDays}
	if len(records) == 0 {
		report.Status = StatusNoData
		report.Message = "No attempts recorded yet."
		report.Weaknesses = []Weakness{}
		report.Recommendations = []string{}
		report.Trend = Trend{Direction: TrendInsufficientData}
		return report, nil
	}

	report.Status = StatusOK
	report.TotalAttempts = len(records)
	report.OverallAccuracy = percent(records)
	report.Weaknesses = findWeaknesses(records)
	report.Recommendations = Recommendations(report.Weaknesses)
	report.Trend = AnalyzeTrend(records)
	return report, nil
}

type tagTally struct {
	total, correct int
	wrong          []ErrorSample
}

// findWeaknesses groups records (oldest first) by tag and returns the tags
// below Threshold, worst first. Ties keep first-seen order.
func findWeaknesses(records []store.AttemptRecord) []Weakness {
	var order []string
	tallies := make(map[string]*tagTally)

	for _, rec := range records {
		for _, tag := range rec.Tags {
			t, ok := tallies[tag]
			if !ok {
				t = &tagTally{}
				tallies[tag] = t
				order = append(order, tag)
			}
			t.total++
			if rec.IsCorrect {
				t.correct++
				continue
			}
			t.wrong = append(t.wrong, ErrorSample{
				QuestionID:    rec.QuestionID,
				Question:      rec.QuestionText,
				UserAnswer:    rec.UserAnswer,
				CorrectAnswer: rec.CorrectAnswer,
				Timestamp:     rec.Timestamp,
			})
		}
	}

	weaknesses := []Weakness{}
	for _, tag := range order {
		t := tallies[tag]
		if float64(t.correct)/float64(t.total) >= Threshold {
			continue
		}
		slices.Reverse(t.wrong)
		weaknesses = append(weaknesses, Weakness{
			Tag:            tag,
			Accuracy:       round1(100 * float64(t.correct) / float64(t.total)),
			TotalAttempts:  t.total,
			ErrorQuestions: t.wrong[:min(len(t.wrong), maxErrorSamples)],
		})
	}

	slices.SortStableFunc(weaknesses, func(a, b Weakness) int {
		switch {
		case a.Accuracy < b.Accuracy:
			return -1
		case a.Accuracy > b.Accuracy:
			return 1
		}
		return 0
	})
	return weaknesses
}

// percent is the share of correct records, as a percentage rounded to one
// decimal.
func percent(records []store.AttemptRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	correct := 0
	for _, r := range records {
		if r.IsCorrect {
			correct++
		}
	}
	return round1(100 * float64(correct) / float64(len(records)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package weakness

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/store"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeReader struct {
	records []store.AttemptRecord
	since   time.Time
	err     error
}

func (f *fakeReader) AttemptsSince(_ context.Context, _ string, since time.Time) ([]store.AttemptRecord, error) {
	f.since = since
	return f.records, f.err
}

// records builds attempts one minute apart, oldest first.
func records(tag string, outcomes ...bool) []store.AttemptRecord {
	out := make([]store.AttemptRecord, len(outcomes))
	for i, ok := range outcomes {
		out[i] = store.AttemptRecord{
			UserID:        "u1",
			QuestionID:    fmt.Sprintf("%s-%d", tag, i),
			QuestionText:  fmt.Sprintf("%s question %d", tag, i),
			UserAnswer:    "wrong",
			CorrectAnswer: "right",
			IsCorrect:     ok,
			Tags:          []string{tag},
			Timestamp:     now.Add(-time.Hour).Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func outcomes(correct, total int) []bool {
	out := make([]bool, total)
	for i := range correct {
		out[i] = true
	}
	return out
}

func TestAnalyze_DetectsWeakTag(t *testing.T) {
	recs := append(records("overfitting", outcomes(3, 10)...), records("clustering", outcomes(9, 10)...)...)
	reader := &fakeReader{records: recs}

	report, err := NewAnalyzer(reader, WithClock(func() time.Time { return now })).Analyze(context.Background(), "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, now.AddDate(0, 0, -30), reader.since)
	assert.Equal(t, 20, report.TotalAttempts)
	assert.Equal(t, 60.0, report.OverallAccuracy)

	require.Len(t, report.Weaknesses, 1)
	w := report.Weaknesses[0]
	assert.Equal(t, "overfitting", w.Tag)
	assert.Equal(t, 30.0, w.Accuracy)
	assert.Equal(t, 10, w.TotalAttempts)

	// 7 incorrect attempts, the 5 newest kept newest first.
	require.Len(t, w.ErrorQuestions, 5)
	assert.Equal(t, "overfitting-9", w.ErrorQuestions[0].QuestionID)
	assert.Equal(t, "overfitting-5", w.ErrorQuestions[4].QuestionID)

	require.Len(t, report.Recommendations, 4)
	assert.Contains(t, report.Recommendations[0], "[Urgent] overfitting")
}

func TestAnalyze_NoData(t *testing.T) {
	report, err := NewAnalyzer(&fakeReader{}).Analyze(context.Background(), "nobody", 7)
	require.NoError(t, err)
	assert.Equal(t, StatusNoData, report.Status)
	assert.Equal(t, 7, report.WindowDays)
	assert.Empty(t, report.Weaknesses)
}

func TestAnalyze_ReadError(t *testing.T) {
	_, err := NewAnalyzer(&fakeReader{err: errors.New("disk gone")}).Analyze(context.Background(), "u1", 30)
	require.Error(t, err)
}

func TestFindWeaknesses_OrderAndMultiTag(t *testing.T) {
	recs := []store.AttemptRecord{
		{IsCorrect: false, Tags: []string{"a", "b"}},
		{IsCorrect: true, Tags: []string{"a"}},
		{IsCorrect: false, Tags: []string{"c"}},
		{IsCorrect: true, Tags: []string{"b", "d"}},
	}
	got := findWeaknesses(recs)

	// a=50%, b=50%, c=0%, d=100%: c first, then a and b in first-seen order.
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Tag, got[1].Tag, got[2].Tag})
}

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []bool
		want     Trend
	}{
		{
			name:     "improving",
			outcomes: []bool{false, false, false, false, false, true, true, true, true, true},
			want:     Trend{Direction: TrendImproving, RecentAccuracy: 100, PreviousAccuracy: 0, Change: 100},
		},
		{
			name:     "declining",
			outcomes: []bool{true, true, true, true, true, true, false, false, false, false, false},
			want:     Trend{Direction: TrendDeclining, RecentAccuracy: 0, PreviousAccuracy: 100, Change: -100},
		},
		{
			name:     "fewer than ten compares with the first five",
			outcomes: []bool{false, false, false, true, true, true, true},
			want:     Trend{Direction: TrendImproving, RecentAccuracy: 80, PreviousAccuracy: 40, Change: 40},
		},
		{
			name:     "stable",
			outcomes: []bool{true, false, true, false, true},
			want:     Trend{Direction: TrendStable, RecentAccuracy: 60, PreviousAccuracy: 60},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeTrend(records("x", tt.outcomes...)))
		})
	}

	assert.Equal(t, TrendInsufficientData, AnalyzeTrend(records("x", true, true, true, true)).Direction)
}

func TestAnalyze_WithStore(t *testing.T) {
	s, err := store.Open("file:weakness_analyze?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := s.PerformanceRepo()
	ctx := context.Background()
	for _, rec := range append(records("overfitting", outcomes(3, 10)...), records("clustering", outcomes(9, 10)...)...) {
		_, err := repo.RecordAttempt(ctx, rec)
		require.NoError(t, err)
	}
	old := records("ancient", false)[0]
	old.Timestamp = now.AddDate(0, 0, -45)
	_, err = repo.RecordAttempt(ctx, old)
	require.NoError(t, err)

	report, err := NewAnalyzer(repo, WithClock(func() time.Time { return now })).Analyze(ctx, "u1", 30)
	require.NoError(t, err)
	assert.Equal(t, 20, report.TotalAttempts, "attempts outside the window are ignored")
	require.Len(t, report.Weaknesses, 1)
	assert.Equal(t, "overfitting", report.Weaknesses[0].Tag)
	assert.Equal(t, 30.0, report.Weaknesses[0].Accuracy)
}

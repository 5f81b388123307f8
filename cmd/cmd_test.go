package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/weakness"
)

// run executes the CLI with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func seed(t *testing.T, dbPath, user string) {
	t.Helper()
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	for i, correct := range []bool{false, false, true} {
		_, err := s.PerformanceRepo().RecordAttempt(context.Background(), store.AttemptRecord{
			UserID:        user,
			QuestionID:    "q" + string(rune('a'+i)),
			QuestionText:  "What is overfitting?",
			QuestionType:  string(questiongen.TypeShortAnswer),
			UserAnswer:    "a bug",
			CorrectAnswer: "memorising noise",
			IsCorrect:     correct,
			Tags:          []string{"overfitting"},
			Difficulty:    "easy",
			Timestamp:     time.Now(),
		})
		require.NoError(t, err)
	}
}

func TestStatsAndReset(t *testing.T) {
	db := filepath.Join(t.TempDir(), "studyloop.db")
	seed(t, db, "alice")

	out := run(t, "", "stats", "--db", db, "--user", "alice", "--json")
	var stats store.UserStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.TotalAttempts)
	assert.Equal(t, 2, stats.UnmasteredWrong)

	out = run(t, "", "weakness", "--db", db, "--user", "alice")
	assert.Contains(t, out, "overfitting")

	out = run(t, "n\n", "reset", "--db", db, "--user", "alice")
	assert.Contains(t, out, "Aborted.")

	out = run(t, "", "reset", "--db", db, "--user", "alice", "--yes")
	assert.Contains(t, out, "Removed 3 attempt(s)")

	out = run(t, "", "review", "--db", db, "--user", "alice")
	assert.Contains(t, out, "Nothing to review.")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, &store.UserStats{
		TotalAttempts:   4,
		CorrectAttempts: 1,
		OverallAccuracy: 0.25,
		TopTags:         []store.TagStat{{Tag: "bias", Total: 4, Correct: 1, Accuracy: 0.25}},
	})
	assert.Contains(t, buf.String(), "1 (25.0%)")
	assert.Contains(t, buf.String(), "bias")

	buf.Reset()
	printStats(&buf, &store.UserStats{})
	assert.Equal(t, "No attempts recorded yet.\n", buf.String())
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	printPlan(&buf, nil)
	assert.Contains(t, buf.String(), "Nothing needs improving")

	buf.Reset()
	printPlan(&buf, weakness.StudyPlan([]weakness.Weakness{{Tag: "bias", Accuracy: 40, TotalAttempts: 5}}))
	assert.Contains(t, buf.String(), "bias")
	assert.Contains(t, buf.String(), "Day 1")
}

func TestPrintQuestion(t *testing.T) {
	var buf bytes.Buffer
	q := &questiongen.Question{
		ID:            "abc",
		Content:       "Which reduces variance?",
		CorrectAnswer: "Bagging",
		Difficulty:    questiongen.DifficultyEasy,
		Tags:          []string{"ensembles"},
		Body:          &questiongen.MultipleChoice{Options: []string{"Bagging", "Boosting"}},
	}
	printQuestion(&buf, 2, q)
	out := buf.String()
	assert.Contains(t, out, "2. [multiple_choice, easy] Which reduces variance?")
	assert.Contains(t, out, "b) Boosting")
	assert.Contains(t, out, "Tags: ensembles")
}

func TestCheckCount(t *testing.T) {
	assert.NoError(t, checkCount(1))
	assert.NoError(t, checkCount(maxQuestions))
	assert.Error(t, checkCount(0))
	assert.Error(t, checkCount(maxQuestions+1))
}

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	printEvents(&buf, nil)
	assert.Equal(t, "No LLM events found.\n", buf.String())

	buf.Reset()
	printEvents(&buf, []store.LLMEvent{{
		ID:                  7,
		Timestamp:           time.Now(),
		LLMRequestEventData: store.LLMRequestEventData{Purpose: "grading", Model: "gpt-4o-mini", Success: false},
	}})
	assert.Contains(t, buf.String(), "grading")
	assert.Contains(t, buf.String(), "✗")
}

func TestVersion(t *testing.T) {
	old := version
	version = "v0.3.1"
	t.Cleanup(func() { version = old })

	assert.Equal(t, "studyloop v0.3.1\n", run(t, "", "version"))
}

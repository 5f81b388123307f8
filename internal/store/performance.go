package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// maxProgressTags is how many of a question's tags feed tag progress.
const maxProgressTags = 3

// defaultTag stands in when a question carries no usable tags.
const defaultTag = "general"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type performanceRepo struct {
	db  *sql.DB
	now func() time.Time
}

func sqlite() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *performanceRepo) RecordAttempt(ctx context.Context, rec AttemptRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := insertAttempt(ctx, tx, rec)
	if err != nil {
		return 0, err
	}
	if !rec.IsCorrect {
		if err := upsertWrongQuestion(ctx, tx, rec); err != nil {
			return 0, err
		}
	}
	if err := incrementTagProgress(ctx, tx, rec.UserID, rec.Tags, rec.IsCorrect, rec.Timestamp); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attempt: %w", err)
	}
	return id, nil
}

func (r *performanceRepo) InsertAttempt(ctx context.Context, rec AttemptRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now()
	}
	return insertAttempt(ctx, r.db, rec)
}

func (r *performanceRepo) UpsertWrongQuestion(ctx context.Context, rec AttemptRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now()
	}
	return upsertWrongQuestion(ctx, r.db, rec)
}

func (r *performanceRepo) IncrementTagProgress(ctx context.Context, userID string, tags []string, correct bool, at time.Time) error {
	if at.IsZero() {
		at = r.now()
	}
	return incrementTagProgress(ctx, r.db, userID, tags, correct, at)
}

func insertAttempt(ctx context.Context, q querier, rec AttemptRecord) (int64, error) {
	at := toMillis(rec.Timestamp)
	query, args := sqlite().Insert(tableAttempts).
		Columns(
			"user_id", "question_id", "question_text", "question_type",
			"user_answer", "correct_answer", "is_correct", "score",
			"tags", "difficulty", "feedback", "mistakes", "explanation",
			"detailed_explanation", "suggested_improvement", "source_excerpt", "created_at",
		).
		Values(
			rec.UserID, rec.QuestionID, rec.QuestionText, rec.QuestionType,
			rec.UserAnswer, rec.CorrectAnswer, rec.IsCorrect, rec.Score,
			encodeList(rec.Tags), rec.Difficulty, rec.Feedback, encodeList(rec.Mistakes), rec.Explanation,
			rec.DetailedExplanation, rec.SuggestedImprovement, encodeList(rec.SourceExcerpt), at,
		).
		Query()

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("attempt id: %w", err)
	}

	for _, tag := range rec.Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		query, args := sqlite().Insert(tableAttemptTags).
			Columns("attempt_id", "user_id", "tag", "is_correct", "created_at").
			Values(id, rec.UserID, tag, rec.IsCorrect, at).
			Query()
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert attempt tag %q: %w", tag, err)
		}
	}
	return id, nil
}

func upsertWrongQuestion(ctx context.Context, q querier, rec AttemptRecord) error {
	at := toMillis(rec.Timestamp)
	query, args := sqlite().Insert(tableWrongQuestions).
		Columns(
			"user_id", "question_id", "question_text", "question_type",
			"user_answer", "correct_answer", "mistakes", "difficulty", "tags",
			"detailed_explanation", "suggested_improvement",
			"first_wrong_at", "last_wrong_at", "wrong_count", "review_count", "mastered",
		).
		Values(
			rec.UserID, rec.QuestionID, rec.QuestionText, rec.QuestionType,
			rec.UserAnswer, rec.CorrectAnswer, encodeList(rec.Mistakes), rec.Difficulty, encodeList(rec.Tags),
			rec.DetailedExplanation, rec.SuggestedImprovement,
			at, at, 1, 0, false,
		).
		OnConflict(
			entsql.ConflictColumns("user_id", "question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Set("last_wrong_at", at)
				u.Add("wrong_count", 1)
			}),
		).
		Query()

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert wrong question: %w", err)
	}
	return nil
}

func incrementTagProgress(ctx context.Context, q querier, userID string, tags []string, correct bool, at time.Time) error {
	ms := toMillis(at)
	inc := 0
	if correct {
		inc = 1
	}
	for _, tag := range progressTags(tags) {
		query, args := sqlite().Insert(tableTagProgress).
			Columns("user_id", "tag", "total_attempts", "correct_attempts", "first_attempt_at", "last_attempt_at").
			Values(userID, tag, 1, inc, ms, ms).
			OnConflict(
				entsql.ConflictColumns("user_id", "tag"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.Add("total_attempts", 1)
					u.Add("correct_attempts", inc)
					u.Set("last_attempt_at", ms)
				}),
			).
			Query()
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update tag progress %q: %w", tag, err)
		}
	}
	return nil
}

// progressTags returns the first three non-blank tags, or the default tag.
func progressTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == maxProgressTags {
			break
		}
	}
	if len(out) == 0 {
		return []string{defaultTag}
	}
	return out
}

func (r *performanceRepo) AttemptsSince(ctx context.Context, userID string, since time.Time) ([]AttemptRecord, error) {
	t := entsql.Table(tableAttempts)
	query, args := sqlite().
		Select(
			t.C("id"), t.C("user_id"), t.C("question_id"), t.C("question_text"), t.C("question_type"),
			t.C("user_answer"), t.C("correct_answer"), t.C("is_correct"), t.C("score"),
			t.C("tags"), t.C("difficulty"), t.C("feedback"), t.C("mistakes"), t.C("explanation"),
			t.C("detailed_explanation"), t.C("suggested_improvement"), t.C("source_excerpt"), t.C("created_at"),
		).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("user_id"), userID),
			entsql.GTE(t.C("created_at"), toMillis(since)),
		)).
		OrderBy(t.C("created_at"), t.C("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var (
			rec                      AttemptRecord
			tags, mistakes, excerpts string
			at                       int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.QuestionID, &rec.QuestionText, &rec.QuestionType,
			&rec.UserAnswer, &rec.CorrectAnswer, &rec.IsCorrect, &rec.Score,
			&tags, &rec.Difficulty, &rec.Feedback, &mistakes, &rec.Explanation,
			&rec.DetailedExplanation, &rec.SuggestedImprovement, &excerpts, &at,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Tags = decodeList(tags)
		rec.Mistakes = decodeList(mistakes)
		rec.SourceExcerpt = decodeList(excerpts)
		rec.Timestamp = fromMillis(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *performanceRepo) WrongQuestions(ctx context.Context, userID string, wq WrongQuery) ([]WrongQuestion, error) {
	limit := wq.Limit
	if limit <= 0 {
		limit = DefaultWrongLimit
	}

	t := entsql.Table(tableWrongQuestions)
	sel := sqlite().
		Select(
			t.C("user_id"), t.C("question_id"), t.C("question_text"), t.C("question_type"),
			t.C("user_answer"), t.C("correct_answer"), t.C("mistakes"), t.C("difficulty"), t.C("tags"),
			t.C("detailed_explanation"), t.C("suggested_improvement"),
			t.C("first_wrong_at"), t.C("last_wrong_at"), t.C("wrong_count"), t.C("review_count"), t.C("mastered"),
		).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("user_id"), userID),
			entsql.EQ(t.C("mastered"), false),
		)).
		OrderBy(entsql.Desc(t.C("last_wrong_at")), entsql.Desc(t.C("id")))
	// Tags are a JSON list, so tag filtering happens after the scan.
	if len(wq.Tags) == 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wrong questions: %w", err)
	}
	defer rows.Close()

	var out []WrongQuestion
	for rows.Next() {
		var (
			w              WrongQuestion
			mistakes, tags string
			first, last    int64
		)
		if err := rows.Scan(
			&w.UserID, &w.QuestionID, &w.QuestionText, &w.QuestionType,
			&w.UserAnswer, &w.CorrectAnswer, &mistakes, &w.Difficulty, &tags,
			&w.DetailedExplanation, &w.SuggestedImprovement,
			&first, &last, &w.WrongCount, &w.ReviewCount, &w.Mastered,
		); err != nil {
			return nil, fmt.Errorf("scan wrong question: %w", err)
		}
		w.Mistakes = decodeList(mistakes)
		w.Tags = decodeList(tags)
		w.FirstWrongAt = fromMillis(first)
		w.LastWrongAt = fromMillis(last)

		if len(wq.Tags) > 0 && !sharesTag(w.Tags, wq.Tags) {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out, rows.Err()
}

func (r *performanceRepo) TagProgress(ctx context.Context, userID string) ([]TagProgress, error) {
	t := entsql.Table(tableTagProgress)
	query, args := sqlite().
		Select(t.C("user_id"), t.C("tag"), t.C("total_attempts"), t.C("correct_attempts"), t.C("first_attempt_at"), t.C("last_attempt_at")).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(t.C("tag")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tag progress: %w", err)
	}
	defer rows.Close()

	var out []TagProgress
	for rows.Next() {
		var (
			p           TagProgress
			first, last int64
		)
		if err := rows.Scan(&p.UserID, &p.Tag, &p.TotalAttempts, &p.CorrectAttempts, &first, &last); err != nil {
			return nil, fmt.Errorf("scan tag progress: %w", err)
		}
		p.FirstAttempt = fromMillis(first)
		p.LastAttempt = fromMillis(last)
		out = append(out, p)
	}
	return out, rows.Err()
}

func sharesTag(have, want []string) bool {
	for _, t := range have {
		if slices.Contains(want, t) {
			return true
		}
	}
	return false
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

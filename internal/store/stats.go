package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *performanceRepo) CountAttempts(ctx context.Context, f AttemptFilter) (int, error) {
	t := entsql.Table(tableAttempts)

	var preds []*entsql.Predicate
	if f.UserID != "" {
		preds = append(preds, entsql.EQ(t.C("user_id"), f.UserID))
	}
	if !f.Since.IsZero() {
		preds = append(preds, entsql.GTE(t.C("created_at"), toMillis(f.Since)))
	}
	if f.Correct != nil {
		preds = append(preds, entsql.EQ(t.C("is_correct"), *f.Correct))
	}
	if f.Difficulty != "" {
		preds = append(preds, entsql.EQ(t.C("difficulty"), f.Difficulty))
	}

	sel := sqlite().Select(entsql.Count("*")).From(t)
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	query, args := sel.Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (r *performanceRepo) TagStats(ctx context.Context, userID string, limit int) ([]TagStat, error) {
	if limit <= 0 {
		limit = DefaultTopTags
	}
	t := entsql.Table(tableAttemptTags)
	query, args := sqlite().
		Select(
			t.C("tag"),
			entsql.As(entsql.Count("*"), "total"),
			entsql.As(entsql.Sum(t.C("is_correct")), "correct"),
		).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		GroupBy(t.C("tag")).
		OrderBy(entsql.Desc("total"), t.C("tag")).
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate tags: %w", err)
	}
	defer rows.Close()

	var out []TagStat
	for rows.Next() {
		var s TagStat
		if err := rows.Scan(&s.Tag, &s.Total, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan tag stat: %w", err)
		}
		s.Accuracy = ratio(s.Correct, s.Total)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *performanceRepo) difficultyStats(ctx context.Context, userID string) ([]DifficultyStat, error) {
	t := entsql.Table(tableAttempts)
	query, args := sqlite().
		Select(
			t.C("difficulty"),
			entsql.As(entsql.Count("*"), "total"),
			entsql.As(entsql.Sum(t.C("is_correct")), "correct"),
		).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		GroupBy(t.C("difficulty")).
		OrderBy(t.C("difficulty")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate difficulty: %w", err)
	}
	defer rows.Close()

	var out []DifficultyStat
	for rows.Next() {
		var s DifficultyStat
		if err := rows.Scan(&s.Difficulty, &s.Total, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan difficulty stat: %w", err)
		}
		s.Accuracy = ratio(s.Correct, s.Total)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *performanceRepo) countUnmastered(ctx context.Context, userID string) (int, error) {
	t := entsql.Table(tableWrongQuestions)
	query, args := sqlite().
		Select(entsql.Count("*")).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("user_id"), userID),
			entsql.EQ(t.C("mastered"), false),
		)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count wrong questions: %w", err)
	}
	return n, nil
}

func (r *performanceRepo) UserStatistics(ctx context.Context, userID string) (*UserStats, error) {
	total, err := r.CountAttempts(ctx, AttemptFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	correctOnly := true
	correct, err := r.CountAttempts(ctx, AttemptFilter{UserID: userID, Correct: &correctOnly})
	if err != nil {
		return nil, err
	}
	byDifficulty, err := r.difficultyStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	tags, err := r.TagStats(ctx, userID, DefaultTopTags)
	if err != nil {
		return nil, err
	}
	unmastered, err := r.countUnmastered(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		UserID:          userID,
		TotalAttempts:   total,
		CorrectAttempts: correct,
		OverallAccuracy: ratio(correct, total),
		ByDifficulty:    byDifficulty,
		TopTags:         tags,
		UnmasteredWrong: unmastered,
	}, nil
}

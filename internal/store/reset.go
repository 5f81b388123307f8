package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ResetUser deletes every attempt, ledger entry and tag counter belonging
// to userID in one transaction and returns the number of attempts removed.
// LLM events are not per-user and are kept.
func (s *Store) ResetUser(ctx context.Context, userID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var attempts int64
	for _, table := range []string{tableAttempts, tableAttemptTags, tableWrongQuestions, tableTagProgress} {
		query, args := sqlite().Delete(table).Where(entsql.EQ("user_id", userID)).Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("reset %s: %w", table, err)
		}
		if table == tableAttempts {
			attempts, _ = res.RowsAffected()
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reset: %w", err)
	}
	return attempts, nil
}

// Package repository persists contest standings and rankings.
package repository

import (
	"context"
	"database/sql"

	"codearena/internal/common/db"
	"codearena/internal/scoring/model"
	appErr "codearena/pkg/errors"
)

// LeaderboardRepository stores cumulative contest standings in MySQL. The
// leaderboard_entries table has a unique key on (contest_id, user_id).
type LeaderboardRepository struct {
	database *db.MySQL
}

// NewLeaderboardRepository creates a repository over the given database.
func NewLeaderboardRepository(database *db.MySQL) *LeaderboardRepository {
	return &LeaderboardRepository{database: database}
}

// ApplyDelta folds one judged submission into the user's standing. The
// statement is a single atomic upsert, so concurrent workers scoring the
// same user never lose an update.
func (r *LeaderboardRepository) ApplyDelta(ctx context.Context, delta model.StandingDelta) error {
	if delta.ContestID == "" {
		return appErr.ValidationError("contest_id", "required")
	}
	if delta.UserID == "" {
		return appErr.ValidationError("user_id", "required")
	}

	accepted := 0
	if delta.Accepted {
		accepted = 1
	}
	const query = `
		INSERT INTO leaderboard_entries
			(contest_id, user_id, total_score, total_submissions, total_accepted, last_submission_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON DUPLICATE KEY UPDATE
			total_score = total_score + VALUES(total_score),
			total_submissions = total_submissions + 1,
			total_accepted = total_accepted + VALUES(total_accepted),
			last_submission_at = VALUES(last_submission_at)`
	_, err := r.database.Exec(ctx, query,
		delta.ContestID, delta.UserID, delta.Score, accepted, delta.LastSubmissionAt)
	if err != nil {
		return appErr.Wrapf(err, appErr.RankUpdateFailed, "apply standing delta failed")
	}
	return nil
}

// RecalculateRanks rewrites the rank column for a whole contest. Ordering
// is total score descending with earlier last submission breaking ties,
// so the ranking is deterministic for any set of rows.
func (r *LeaderboardRepository) RecalculateRanks(ctx context.Context, contestID string) error {
	if contestID == "" {
		return appErr.ValidationError("contest_id", "required")
	}
	err := r.database.Transaction(ctx, func(tx *sql.Tx) error {
		const query = `
			SELECT user_id, total_score, last_submission_at
			FROM leaderboard_entries
			WHERE contest_id = ?
			FOR UPDATE`
		rows, err := tx.QueryContext(ctx, query, contestID)
		if err != nil {
			return err
		}
		entries := make([]model.LeaderboardEntry, 0, 64)
		for rows.Next() {
			var entry model.LeaderboardEntry
			if err := rows.Scan(&entry.UserID, &entry.TotalScore, &entry.LastSubmissionAt); err != nil {
				rows.Close()
				return err
			}
			entries = append(entries, entry)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		model.RankEntries(entries)

		const update = `
			UPDATE leaderboard_entries SET ` + "`rank`" + ` = ?
			WHERE contest_id = ? AND user_id = ?`
		for _, entry := range entries {
			if _, err := tx.ExecContext(ctx, update, entry.Rank, contestID, entry.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.RankUpdateFailed, "recalculate ranks failed")
	}
	return nil
}

// ListByContest returns the full leaderboard in rank order.
func (r *LeaderboardRepository) ListByContest(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	if contestID == "" {
		return nil, appErr.ValidationError("contest_id", "required")
	}
	const query = `
		SELECT ` + "`rank`" + `, user_id, total_score, total_submissions,
		       total_accepted, last_submission_at
		FROM leaderboard_entries
		WHERE contest_id = ?
		ORDER BY total_score DESC, last_submission_at ASC, user_id ASC`
	rows, err := r.database.Query(ctx, query, contestID)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "list leaderboard failed")
	}
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0, 64)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.TotalScore,
			&e.TotalSubmissions, &e.TotalAccepted, &e.LastSubmissionAt); err != nil {
			return nil, appErr.Wrapf(err, appErr.DatabaseError, "scan leaderboard entry failed")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "iterate leaderboard failed")
	}
	return entries, nil
}

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"codearena/internal/common/db"
	"codearena/internal/scoring/model"
	"codearena/internal/scoring/repository"
)

func newMockRepository(t *testing.T) (*repository.LeaderboardRepository, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return repository.NewLeaderboardRepository(db.NewMySQLWithDB(pool)), mock
}

func TestApplyDeltaAccumulatesExistingStanding(t *testing.T) {
	repo, mock := newMockRepository(t)
	submittedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// The upsert must add onto the stored totals so replays and later
	// submissions accumulate instead of overwriting.
	mock.ExpectExec(`INSERT INTO leaderboard_entries .* ON DUPLICATE KEY UPDATE `+
		`total_score = total_score \+ VALUES\(total_score\), `+
		`total_submissions = total_submissions \+ 1, `+
		`total_accepted = total_accepted \+ VALUES\(total_accepted\)`).
		WithArgs("c1", "u1", 104.0, 1, submittedAt).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.ApplyDelta(context.Background(), model.StandingDelta{
		ContestID:        "c1",
		UserID:           "u1",
		Score:            104,
		Accepted:         true,
		LastSubmissionAt: submittedAt,
	})
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("upsert statement mismatch: %v", err)
	}
}

func TestRecalculateRanksWritesDeterministicOrder(t *testing.T) {
	repo, mock := newMockRepository(t)
	early := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, total_score, last_submission_at `+
		`FROM leaderboard_entries WHERE contest_id = \? FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_score", "last_submission_at"}).
			AddRow("u1", 50.0, early).
			AddRow("u2", 80.0, late).
			AddRow("u3", 80.0, early))
	update := "UPDATE leaderboard_entries SET `rank` = \\? WHERE contest_id = \\? AND user_id = \\?"
	mock.ExpectExec(update).WithArgs(1, "c1", "u3").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs(2, "c1", "u2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs(3, "c1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.RecalculateRanks(context.Background(), "c1"); err != nil {
		t.Fatalf("recalculate ranks: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("rank updates mismatch: %v", err)
	}
}

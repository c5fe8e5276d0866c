// Package repository persists submissions and their per-test results.
package repository

import (
	"context"
	"database/sql"

	"codearena/internal/common/db"
	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

// SubmissionRepository stores judged submissions in MySQL.
type SubmissionRepository struct {
	database *db.MySQL
}

// NewSubmissionRepository creates a repository over the given database.
func NewSubmissionRepository(database *db.MySQL) *SubmissionRepository {
	return &SubmissionRepository{database: database}
}

// CreateRunning records that a submission has entered the execution phase.
// Replays of the same submission overwrite the previous row.
func (r *SubmissionRepository) CreateRunning(ctx context.Context, sub *model.Submission) error {
	const query = `
		INSERT INTO submissions
			(id, contest_id, user_id, problem_id, language, status,
			 total_test_cases, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			total_test_cases = VALUES(total_test_cases),
			error_message = ''`
	_, err := r.database.Exec(ctx, query,
		sub.ID, sub.ContestID, sub.UserID, sub.ProblemID, sub.Language,
		string(model.StatusRunning), sub.TotalTestCases, sub.CreatedAt)
	if err != nil {
		return appErr.Wrapf(err, appErr.DatabaseError, "create running submission failed")
	}
	return nil
}

// SaveVerdict writes the terminal status and all test case results in one
// transaction. Results from an earlier attempt are replaced.
func (r *SubmissionRepository) SaveVerdict(ctx context.Context, sub *model.Submission, results []model.TestCaseResult) error {
	if !sub.Status.Terminal() {
		return appErr.ValidationError("status", "not terminal")
	}
	err := r.database.Transaction(ctx, func(tx *sql.Tx) error {
		const update = `
			UPDATE submissions
			SET status = ?, test_cases_passed = ?, total_test_cases = ?,
			    score = ?, execution_time_ms = ?, memory_used_kb = ?,
			    error_message = ?, judged_at = ?
			WHERE id = ?`
		if _, err := tx.ExecContext(ctx, update,
			string(sub.Status), sub.TestCasesPassed, sub.TotalTestCases,
			sub.Score, sub.ExecutionTimeMs, sub.MemoryUsedKB,
			sub.ErrorMessage, sub.JudgedAt, sub.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM submission_results WHERE submission_id = ?`, sub.ID); err != nil {
			return err
		}
		const insert = `
			INSERT INTO submission_results
				(submission_id, test_case_index, status, execution_time_ms,
				 memory_used_kb, actual_output, error_detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		for _, tr := range results {
			if _, err := tx.ExecContext(ctx, insert,
				sub.ID, tr.Index, string(tr.Status), tr.ExecutionTimeMs,
				tr.MemoryUsedKB, tr.ActualOutput, tr.ErrorDetail); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.DatabaseError, "save verdict failed")
	}
	return nil
}

// GetByID loads a submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	const query = `
		SELECT id, contest_id, user_id, problem_id, language, status,
		       test_cases_passed, total_test_cases, score, execution_time_ms,
		       memory_used_kb, error_message, created_at, judged_at
		FROM submissions WHERE id = ?`
	row := r.database.QueryRow(ctx, query, id)

	var sub model.Submission
	var status string
	var judgedAt sql.NullTime
	err := row.Scan(&sub.ID, &sub.ContestID, &sub.UserID, &sub.ProblemID,
		&sub.Language, &status, &sub.TestCasesPassed, &sub.TotalTestCases,
		&sub.Score, &sub.ExecutionTimeMs, &sub.MemoryUsedKB,
		&sub.ErrorMessage, &sub.CreatedAt, &judgedAt)
	if db.IsNoRows(err) {
		return nil, appErr.Newf(appErr.SubmissionNotFound, "submission %s not found", id)
	}
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "load submission failed")
	}
	sub.Status = model.SubmissionStatus(status)
	if judgedAt.Valid {
		sub.JudgedAt = judgedAt.Time
	}
	return &sub, nil
}

// ListResults loads the per-test results of a submission ordered by index.
func (r *SubmissionRepository) ListResults(ctx context.Context, submissionID string) ([]model.TestCaseResult, error) {
	const query = `
		SELECT submission_id, test_case_index, status, execution_time_ms,
		       memory_used_kb, actual_output, error_detail
		FROM submission_results
		WHERE submission_id = ?
		ORDER BY test_case_index ASC`
	rows, err := r.database.Query(ctx, query, submissionID)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "list submission results failed")
	}
	defer rows.Close()

	var results []model.TestCaseResult
	for rows.Next() {
		var tr model.TestCaseResult
		var status string
		if err := rows.Scan(&tr.SubmissionID, &tr.Index, &status,
			&tr.ExecutionTimeMs, &tr.MemoryUsedKB, &tr.ActualOutput, &tr.ErrorDetail); err != nil {
			return nil, appErr.Wrapf(err, appErr.DatabaseError, "scan submission result failed")
		}
		tr.Status = model.TestCaseStatus(status)
		results = append(results, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "iterate submission results failed")
	}
	return results, nil
}

// ReportStatus implements the sandbox status hook by bumping the stored
// status while tests are still running.
func (r *SubmissionRepository) ReportStatus(ctx context.Context, submissionID string, status model.SubmissionStatus) error {
	if !status.Valid() {
		return appErr.ValidationError("status", "unknown")
	}
	_, err := r.database.Exec(ctx,
		`UPDATE submissions SET status = ? WHERE id = ?`, string(status), submissionID)
	if err != nil {
		return appErr.Wrapf(err, appErr.DatabaseError, "report status failed")
	}
	return nil
}

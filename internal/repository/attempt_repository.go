package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"testboard/internal/domain"
	"testboard/internal/repository/models"
	"testboard/internal/util"

	"github.com/jmoiron/sqlx"
)

func toDomainAttempt(m *models.TestAttempt) *domain.TestAttempt {
	if m == nil {
		return nil
	}
	var score *float64
	if m.Score.Valid {
		v := m.Score.Float64
		score = &v
	}
	var endTime *time.Time
	if m.EndTime.Valid {
		v := m.EndTime.Time
		endTime = &v
	}
	return &domain.TestAttempt{
		ID:        m.ID,
		UserID:    m.UserID,
		TestID:    m.TestID,
		Score:     score,
		StartTime: m.StartTime,
		EndTime:   endTime,
	}
}

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

// CreateAttempt inserts a new in-progress attempt. The unique constraint on
// (user_id, test_id) makes the one-attempt invariant atomic; a violation is
// reported as domain.ErrDuplicateAttempt.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.TestAttempt) error {
	m := &models.TestAttempt{
		ID:        attempt.ID,
		UserID:    attempt.UserID,
		TestID:    attempt.TestID,
		Score:     util.Float64PtrToNullFloat64(attempt.Score),
		StartTime: attempt.StartTime,
	}
	if attempt.EndTime != nil {
		m.EndTime = util.TimeToNullTime(*attempt.EndTime)
	}

	query := `INSERT INTO test_attempts (id, user_id, test_id, score, start_time, end_time)
	          VALUES (:id, :user_id, :test_id, :score, :start_time, :end_time)`
	_, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAttempt
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetOpenAttempt finds the caller's in-progress attempt for the test.
func (r *sqlxAttemptRepository) GetOpenAttempt(ctx context.Context, userID, testID string) (*domain.TestAttempt, error) {
	var m models.TestAttempt
	query := `SELECT id, user_id, test_id, score, start_time, end_time
	          FROM test_attempts
	          WHERE user_id = $1 AND test_id = $2 AND end_time IS NULL`
	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, userID, testID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

// CompleteAttempt records the final score and end time, exactly once.
func (r *sqlxAttemptRepository) CompleteAttempt(ctx context.Context, attemptID string, score float64, endTime time.Time) error {
	query := `UPDATE test_attempts SET score = $1, end_time = $2
	          WHERE id = $3 AND end_time IS NULL`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, score, endTime, attemptID)
	if err != nil {
		return fmt.Errorf("failed to complete attempt: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateAnswer inserts one graded answer row.
func (r *sqlxAttemptRepository) CreateAnswer(ctx context.Context, answer *domain.Answer) error {
	m := &models.Answer{
		ID:         answer.ID,
		AttemptID:  answer.AttemptID,
		QuestionID: answer.QuestionID,
		Answer:     answer.Answer,
		IsCorrect:  answer.IsCorrect,
		AnswerTime: answer.AnswerTime,
	}
	query := `INSERT INTO answers (id, attempt_id, question_id, answer, is_correct, answer_time)
	          VALUES (:id, :attempt_id, :question_id, :answer, :is_correct, :answer_time)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

// GetAverageScore averages scores over every attempt of the test.
// Attempts without a score yet do not contribute; no attempts yields 0.
func (r *sqlxAttemptRepository) GetAverageScore(ctx context.Context, testID string) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(score), 0) FROM test_attempts WHERE test_id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &avg, query, testID); err != nil {
		return 0, fmt.Errorf("failed to get average score: %w", err)
	}
	return avg, nil
}

// GetAverageCompletionSeconds averages completion time over finished attempts.
func (r *sqlxAttemptRepository) GetAverageCompletionSeconds(ctx context.Context, testID string) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (end_time - start_time))), 0)
	          FROM test_attempts
	          WHERE test_id = $1 AND end_time IS NOT NULL`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &avg, query, testID); err != nil {
		return 0, fmt.Errorf("failed to get average completion time: %w", err)
	}
	return avg, nil
}

// GetQuestionStats aggregates correctness and timing per question. The inner
// join naturally omits questions without any recorded answers.
func (r *sqlxAttemptRepository) GetQuestionStats(ctx context.Context, testID string) ([]domain.QuestionStats, error) {
	var rows []struct {
		QuestionID string  `db:"question_id"`
		Total      int     `db:"total"`
		Correct    int     `db:"correct"`
		AvgTime    float64 `db:"avg_time"`
	}
	query := `SELECT q.id AS question_id,
	                 COUNT(a.id) AS total,
	                 COUNT(a.id) FILTER (WHERE a.is_correct) AS correct,
	                 COALESCE(AVG(a.answer_time), 0) AS avg_time
	          FROM questions q
	          JOIN answers a ON a.question_id = q.id
	          WHERE q.test_id = $1
	          GROUP BY q.id
	          ORDER BY q.id`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, testID); err != nil {
		return nil, fmt.Errorf("failed to get question stats: %w", err)
	}

	stats := make([]domain.QuestionStats, 0, len(rows))
	for _, row := range rows {
		s := domain.QuestionStats{
			QuestionID:  row.QuestionID,
			AverageTime: row.AvgTime,
		}
		if row.Total > 0 {
			s.CorrectPercentage = float64(row.Correct) / float64(row.Total) * 100
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// GetAttemptRecords returns raw per-attempt rows for export, oldest first.
func (r *sqlxAttemptRepository) GetAttemptRecords(ctx context.Context, testID string) ([]domain.AttemptRecord, error) {
	var rows []struct {
		UserID            string          `db:"user_id"`
		Score             sql.NullFloat64 `db:"score"`
		StartTime         time.Time       `db:"start_time"`
		EndTime           sql.NullTime    `db:"end_time"`
		CompletionSeconds float64         `db:"completion_seconds"`
	}
	query := `SELECT user_id, score, start_time, end_time,
	                 COALESCE(EXTRACT(EPOCH FROM (end_time - start_time)), 0) AS completion_seconds
	          FROM test_attempts
	          WHERE test_id = $1
	          ORDER BY start_time`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, testID); err != nil {
		return nil, fmt.Errorf("failed to get attempt records: %w", err)
	}

	records := make([]domain.AttemptRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.AttemptRecord{
			UserID:            row.UserID,
			StartTime:         row.StartTime,
			CompletionSeconds: row.CompletionSeconds,
		}
		if row.Score.Valid {
			v := row.Score.Float64
			rec.Score = &v
		}
		if row.EndTime.Valid {
			v := row.EndTime.Time
			rec.EndTime = &v
		}
		records = append(records, rec)
	}
	return records, nil
}

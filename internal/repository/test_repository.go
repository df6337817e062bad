package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"testboard/internal/domain"
	"testboard/internal/repository/models"
	"testboard/internal/util"

	"github.com/jmoiron/sqlx"
)

func toDomainTest(m *models.Test, questions []models.Question) *domain.Test {
	if m == nil {
		return nil
	}
	var timeLimit *int
	if m.TimeLimit.Valid {
		v := int(m.TimeLimit.Int64)
		timeLimit = &v
	}
	t := &domain.Test{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description.String,
		CreatorID:        m.CreatorID,
		TimeLimit:        timeLimit,
		ShuffleQuestions: m.ShuffleQuestions,
		CreatedAt:        m.CreatedAt,
		Questions:        make([]domain.Question, 0, len(questions)),
	}
	for _, q := range questions {
		t.Questions = append(t.Questions, domain.Question{
			ID:            q.ID,
			TestID:        q.TestID,
			Text:          q.Text,
			Type:          domain.QuestionType(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return t
}

func fromDomainTest(t *domain.Test) *models.Test {
	if t == nil {
		return nil
	}
	return &models.Test{
		ID:               t.ID,
		Title:            t.Title,
		Description:      util.StringToNullString(t.Description),
		CreatorID:        t.CreatorID,
		TimeLimit:        util.IntPtrToNullInt64(t.TimeLimit),
		ShuffleQuestions: t.ShuffleQuestions,
		CreatedAt:        t.CreatedAt,
	}
}

// sqlxTestRepository implements domain.TestRepository using sqlx.
type sqlxTestRepository struct {
	db *sqlx.DB
}

// NewSQLXTestRepository creates a new instance of sqlxTestRepository.
func NewSQLXTestRepository(db *sqlx.DB) domain.TestRepository {
	return &sqlxTestRepository{db: db}
}

// CreateTest inserts the test row and all question rows. Callers wrap it in
// a transaction so a failing question insert leaves no partial test.
func (r *sqlxTestRepository) CreateTest(ctx context.Context, test *domain.Test) error {
	exec := GetExecutor(ctx, r.db)

	query := `INSERT INTO tests (id, title, description, creator_id, time_limit, shuffle_questions, created_at)
	          VALUES (:id, :title, :description, :creator_id, :time_limit, :shuffle_questions, :created_at)`
	if _, err := exec.NamedExecContext(ctx, query, fromDomainTest(test)); err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}

	return r.insertQuestions(ctx, exec, test)
}

// ReplaceTest updates the test row and swaps its question set.
func (r *sqlxTestRepository) ReplaceTest(ctx context.Context, test *domain.Test) error {
	exec := GetExecutor(ctx, r.db)

	query := `UPDATE tests
	          SET title = :title, description = :description, time_limit = :time_limit,
	              shuffle_questions = :shuffle_questions
	          WHERE id = :id`
	result, err := exec.NamedExecContext(ctx, query, fromDomainTest(test))
	if err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM questions WHERE test_id = $1`, test.ID); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}

	return r.insertQuestions(ctx, exec, test)
}

func (r *sqlxTestRepository) insertQuestions(ctx context.Context, exec DBTX, test *domain.Test) error {
	query := `INSERT INTO questions (id, test_id, text, type, options, correct_answer)
	          VALUES (:id, :test_id, :text, :type, :options, :correct_answer)`
	for _, q := range test.Questions {
		m := &models.Question{
			ID:            q.ID,
			TestID:        test.ID,
			Text:          q.Text,
			Type:          string(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
		if _, err := exec.NamedExecContext(ctx, query, m); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}
	return nil
}

// DeleteTest removes the test; questions and attempts cascade at the schema
// level.
func (r *sqlxTestRepository) DeleteTest(ctx context.Context, id string) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}
	return nil
}

// GetTestByID loads a test and its questions in stored order.
func (r *sqlxTestRepository) GetTestByID(ctx context.Context, id string) (*domain.Test, error) {
	exec := GetExecutor(ctx, r.db)

	var m models.Test
	query := `SELECT id, title, description, creator_id, time_limit, shuffle_questions, created_at
	          FROM tests WHERE id = $1`
	err := exec.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test by id: %w", err)
	}

	var questions []models.Question
	query = `SELECT id, test_id, text, type, options, correct_answer
	         FROM questions WHERE test_id = $1 ORDER BY id`
	if err := exec.SelectContext(ctx, &questions, query, id); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return toDomainTest(&m, questions), nil
}

// GetTestSummaries lists all tests with their question counts.
func (r *sqlxTestRepository) GetTestSummaries(ctx context.Context) ([]domain.TestSummary, error) {
	var rows []struct {
		ID            string         `db:"id"`
		Title         string         `db:"title"`
		Description   sql.NullString `db:"description"`
		QuestionCount int            `db:"question_count"`
	}
	query := `SELECT t.id, t.title, t.description, COUNT(q.id) AS question_count
	          FROM tests t
	          LEFT JOIN questions q ON q.test_id = t.id
	          GROUP BY t.id, t.title, t.description, t.created_at
	          ORDER BY t.created_at`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	summaries := make([]domain.TestSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.TestSummary{
			ID:            row.ID,
			Title:         row.Title,
			Description:   row.Description.String,
			QuestionCount: row.QuestionCount,
		})
	}
	return summaries, nil
}

// TitleExists reports whether another test already uses the title.
func (r *sqlxTestRepository) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM tests WHERE title = $1 AND id <> $2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, title, excludeID); err != nil {
		return false, fmt.Errorf("failed to check test title: %w", err)
	}
	return count > 0, nil
}

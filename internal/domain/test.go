package domain

import (
	"context"
	"time"
)

// QuestionType distinguishes free-text questions from multiple choice ones.
type QuestionType string

const (
	QuestionOpen           QuestionType = "open"
	QuestionMultipleChoice QuestionType = "multiple_choice"
)

// ValidQuestionType reports whether s is a recognized question type.
func ValidQuestionType(s string) bool {
	return QuestionType(s) == QuestionOpen || QuestionType(s) == QuestionMultipleChoice
}

// Question belongs to exactly one test. Options is non-nil only for
// multiple choice questions, where CorrectAnswer must be one of them.
type Question struct {
	ID            string
	TestID        string
	Text          string
	Type          QuestionType
	Options       []string
	CorrectAnswer string
}

// Test is authored content owned exclusively by its creator.
type Test struct {
	ID               string
	Title            string
	Description      string
	CreatorID        string
	TimeLimit        *int
	ShuffleQuestions bool
	CreatedAt        time.Time
	Questions        []Question
}

// TestSummary is a catalog listing row.
type TestSummary struct {
	ID            string
	Title         string
	Description   string
	QuestionCount int
}

// TestRepository defines persistence for tests and their questions.
type TestRepository interface {
	// CreateTest inserts the test and all of its questions.
	CreateTest(ctx context.Context, test *Test) error

	// ReplaceTest updates the test row and replaces its question set.
	ReplaceTest(ctx context.Context, test *Test) error

	// DeleteTest removes the test; questions and attempts cascade.
	DeleteTest(ctx context.Context, id string) error

	// GetTestByID loads a test with its questions, (nil, nil) when missing.
	GetTestByID(ctx context.Context, id string) (*Test, error)

	// GetTestSummaries lists all tests with their question counts.
	GetTestSummaries(ctx context.Context) ([]TestSummary, error)

	// TitleExists reports whether another test (excluding excludeID, which
	// may be empty) already uses the title.
	TitleExists(ctx context.Context, title, excludeID string) (bool, error)
}

// TransactionManager runs fn within a single storage transaction. Any error
// from fn rolls back every write made through repositories using the
// transaction-carrying context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

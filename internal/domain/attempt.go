package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateAttempt is returned when inserting a second attempt for the
// same (user, test) pair. The invariant is enforced by a unique constraint,
// so concurrent starts cannot both succeed.
var ErrDuplicateAttempt = errors.New("attempt already exists for this user and test")

// ErrDuplicateEmail is returned when registering an email that is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// TestAttempt is one participant's single run through a test. Score and
// EndTime are nil while the attempt is in progress and are set exactly once
// on submission.
type TestAttempt struct {
	ID        string
	UserID    string
	TestID    string
	Score     *float64
	StartTime time.Time
	EndTime   *time.Time
}

// Answer records one submitted answer with its grading outcome.
type Answer struct {
	ID         string
	AttemptID  string
	QuestionID string
	Answer     string
	IsCorrect  bool
	AnswerTime float64
}

// AttemptRecord is a per-attempt export row for a test's creator.
type AttemptRecord struct {
	UserID            string
	Score             *float64
	StartTime         time.Time
	EndTime           *time.Time
	CompletionSeconds float64
}

// QuestionStats aggregates answer outcomes for a single question.
type QuestionStats struct {
	QuestionID        string
	CorrectPercentage float64
	AverageTime       float64
}

// AttemptRepository defines persistence for attempts and their answers.
type AttemptRepository interface {
	// CreateAttempt inserts a new in-progress attempt. Returns
	// ErrDuplicateAttempt when one already exists for (user, test).
	CreateAttempt(ctx context.Context, attempt *TestAttempt) error

	// GetOpenAttempt returns the caller's unfinished attempt for the test,
	// or (nil, nil) when there is none.
	GetOpenAttempt(ctx context.Context, userID, testID string) (*TestAttempt, error)

	// CompleteAttempt sets the final score and end time.
	CompleteAttempt(ctx context.Context, attemptID string, score float64, endTime time.Time) error

	// CreateAnswer inserts a graded answer row.
	CreateAnswer(ctx context.Context, answer *Answer) error

	// GetAverageScore averages scores over all attempts of a test, 0 when none.
	GetAverageScore(ctx context.Context, testID string) (float64, error)

	// GetAverageCompletionSeconds averages completion time over finished
	// attempts, 0 when none.
	GetAverageCompletionSeconds(ctx context.Context, testID string) (float64, error)

	// GetQuestionStats aggregates per-question correctness and timing over
	// all recorded answers. Questions with zero answers are omitted.
	GetQuestionStats(ctx context.Context, testID string) ([]QuestionStats, error)

	// GetAttemptRecords returns raw per-attempt rows for export.
	GetAttemptRecords(ctx context.Context, testID string) ([]AttemptRecord, error)
}

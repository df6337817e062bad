package service

import (
	"context"
	"time"

	"testboard/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- MockTestRepository ---
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) CreateTest(ctx context.Context, test *domain.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) ReplaceTest(ctx context.Context, test *domain.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) DeleteTest(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) GetTestByID(ctx context.Context, id string) (*domain.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Test), args.Error(1)
}

func (m *MockTestRepository) GetTestSummaries(ctx context.Context) ([]domain.TestSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TestSummary), args.Error(1)
}

func (m *MockTestRepository) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	args := m.Called(ctx, title, excludeID)
	return args.Bool(0), args.Error(1)
}

// --- MockAttemptRepository ---
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.TestAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetOpenAttempt(ctx context.Context, userID, testID string) (*domain.TestAttempt, error) {
	args := m.Called(ctx, userID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CompleteAttempt(ctx context.Context, attemptID string, score float64, endTime time.Time) error {
	args := m.Called(ctx, attemptID, score, endTime)
	return args.Error(0)
}

func (m *MockAttemptRepository) CreateAnswer(ctx context.Context, answer *domain.Answer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetAverageScore(ctx context.Context, testID string) (float64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAttemptRepository) GetAverageCompletionSeconds(ctx context.Context, testID string) (float64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAttemptRepository) GetQuestionStats(ctx context.Context, testID string) ([]domain.QuestionStats, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuestionStats), args.Error(1)
}

func (m *MockAttemptRepository) GetAttemptRecords(ctx context.Context, testID string) ([]domain.AttemptRecord, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttemptRecord), args.Error(1)
}

// --- MockTransactionManager ---
// Runs the callback directly; repository mocks observe the writes.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

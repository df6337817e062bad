package service

import (
	"context"
	"time"

	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/logger"
	"testboard/internal/util"
	"testboard/internal/validation"

	"go.uber.org/zap"
)

// TestService defines the catalog operations for authored tests.
type TestService interface {
	ListTests(ctx context.Context) (*dto.TestListResponse, error)
	GetTest(ctx context.Context, userID, testID string) (*dto.TestDetailResponse, error)
	CreateTest(ctx context.Context, userID string, req *dto.TestRequest) (string, error)
	UpdateTest(ctx context.Context, userID, testID string, req *dto.TestRequest) error
	DeleteTest(ctx context.Context, userID, testID string) error
}

type testServiceImpl struct {
	gate      *accessGate
	testRepo  domain.TestRepository
	txManager domain.TransactionManager
	validator *validation.Validator
}

// NewTestService creates a new instance of TestService.
func NewTestService(userRepo domain.UserRepository, testRepo domain.TestRepository, txManager domain.TransactionManager) TestService {
	return &testServiceImpl{
		gate:      &accessGate{users: userRepo, tests: testRepo},
		testRepo:  testRepo,
		txManager: txManager,
		validator: validation.NewValidator(),
	}
}

// ListTests returns every test with its question count. Any authenticated
// user may browse the catalog.
func (s *testServiceImpl) ListTests(ctx context.Context) (*dto.TestListResponse, error) {
	summaries, err := s.testRepo.GetTestSummaries(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list tests")
	}

	resp := &dto.TestListResponse{Tests: make([]dto.TestSummaryResponse, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Tests = append(resp.Tests, dto.TestSummaryResponse{
			ID:            sum.ID,
			Title:         sum.Title,
			Description:   sum.Description,
			QuestionCount: sum.QuestionCount,
		})
	}
	return resp, nil
}

// GetTest returns the full authored test, correct answers included. Only
// the owning creator may see it.
func (s *testServiceImpl) GetTest(ctx context.Context, userID, testID string) (*dto.TestDetailResponse, error) {
	test, err := s.gate.requireOwnership(ctx, userID, testID)
	if err != nil {
		return nil, err
	}

	resp := &dto.TestDetailResponse{
		ID:               test.ID,
		Title:            test.Title,
		Description:      test.Description,
		TimeLimit:        test.TimeLimit,
		ShuffleQuestions: test.ShuffleQuestions,
		Questions:        make([]dto.QuestionDetailResponse, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		resp.Questions = append(resp.Questions, dto.QuestionDetailResponse{
			ID:            q.ID,
			Text:          q.Text,
			Type:          string(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return resp, nil
}

// CreateTest validates and persists a new test with its questions.
func (s *testServiceImpl) CreateTest(ctx context.Context, userID string, req *dto.TestRequest) (string, error) {
	if errs := s.validator.ValidateTestRequest(req); len(errs) > 0 {
		return "", errs
	}
	if _, err := s.gate.requireRole(ctx, userID, domain.RoleCreator); err != nil {
		return "", err
	}

	taken, err := s.testRepo.TitleExists(ctx, req.Title, "")
	if err != nil {
		return "", mapRepositoryError(err, "failed to check test title")
	}
	if taken {
		return "", domain.NewError(domain.CodeValidation, "test title already exists", nil).WithKey("validation_error")
	}

	test := buildTest(util.NewULID(), userID, req)
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.testRepo.CreateTest(ctx, test)
	})
	if err != nil {
		return "", mapRepositoryError(err, "failed to create test")
	}

	logger.Get().Info("Test created",
		zap.String("testID", test.ID),
		zap.String("creatorID", userID),
		zap.Int("questions", len(test.Questions)))
	return test.ID, nil
}

// UpdateTest replaces the test and its whole question set.
func (s *testServiceImpl) UpdateTest(ctx context.Context, userID, testID string, req *dto.TestRequest) error {
	if errs := s.validator.ValidateTestRequest(req); len(errs) > 0 {
		return errs
	}
	if _, err := s.gate.requireOwnership(ctx, userID, testID); err != nil {
		return err
	}

	taken, err := s.testRepo.TitleExists(ctx, req.Title, testID)
	if err != nil {
		return mapRepositoryError(err, "failed to check test title")
	}
	if taken {
		return domain.NewError(domain.CodeValidation, "test title already exists", nil).WithKey("validation_error")
	}

	test := buildTest(testID, userID, req)
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.testRepo.ReplaceTest(ctx, test)
	})
	if err != nil {
		return mapRepositoryError(err, "failed to update test")
	}

	logger.Get().Info("Test updated", zap.String("testID", testID))
	return nil
}

// DeleteTest removes the test; questions, attempts and answers cascade.
func (s *testServiceImpl) DeleteTest(ctx context.Context, userID, testID string) error {
	if _, err := s.gate.requireOwnership(ctx, userID, testID); err != nil {
		return err
	}
	if err := s.testRepo.DeleteTest(ctx, testID); err != nil {
		return mapRepositoryError(err, "failed to delete test")
	}
	logger.Get().Info("Test deleted", zap.String("testID", testID))
	return nil
}

func buildTest(testID, creatorID string, req *dto.TestRequest) *domain.Test {
	test := &domain.Test{
		ID:               testID,
		Title:            req.Title,
		Description:      req.Description,
		CreatorID:        creatorID,
		TimeLimit:        req.TimeLimit,
		ShuffleQuestions: req.ShuffleQuestions,
		CreatedAt:        time.Now(),
		Questions:        make([]domain.Question, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		test.Questions = append(test.Questions, domain.Question{
			ID:            util.NewULID(),
			TestID:        testID,
			Text:          q.Text,
			Type:          domain.QuestionType(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return test
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"testboard/internal/cache"
	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/logger"
	"testboard/internal/util"
	"testboard/internal/validation"

	"go.uber.org/zap"
)

// AttemptService runs the participant-facing attempt flow: starting a test
// and submitting its answers for grading.
type AttemptService interface {
	StartTest(ctx context.Context, userID, testID string) (*dto.StartTestResponse, error)
	SubmitTest(ctx context.Context, userID, testID string, req *dto.SubmitTestRequest) (*dto.SubmitTestResponse, error)
}

type attemptServiceImpl struct {
	gate        *accessGate
	testRepo    domain.TestRepository
	attemptRepo domain.AttemptRepository
	txManager   domain.TransactionManager
	statsCache  domain.Cache
	validator   *validation.Validator
}

// NewAttemptService creates a new instance of AttemptService. statsCache
// may be nil when caching is disabled.
func NewAttemptService(
	userRepo domain.UserRepository,
	testRepo domain.TestRepository,
	attemptRepo domain.AttemptRepository,
	txManager domain.TransactionManager,
	statsCache domain.Cache,
) AttemptService {
	return &attemptServiceImpl{
		gate:        &accessGate{users: userRepo, tests: testRepo},
		testRepo:    testRepo,
		attemptRepo: attemptRepo,
		txManager:   txManager,
		statsCache:  statsCache,
		validator:   validation.NewValidator(),
	}
}

// StartTest opens a new attempt and returns the questions without their
// correct answers. The unique constraint behind CreateAttempt guarantees at
// most one attempt per (user, test) even under concurrent starts.
func (s *attemptServiceImpl) StartTest(ctx context.Context, userID, testID string) (*dto.StartTestResponse, error) {
	if _, err := s.gate.requireRole(ctx, userID, domain.RoleParticipant); err != nil {
		return nil, err
	}

	test, err := s.testRepo.GetTestByID(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load test")
	}
	if test == nil {
		return nil, domain.NewNotFoundError("test not found").WithKey("test_not_found")
	}

	attempt := &domain.TestAttempt{
		ID:        util.NewULID(),
		UserID:    userID,
		TestID:    testID,
		StartTime: time.Now(),
	}
	if err := s.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
		if errors.Is(err, domain.ErrDuplicateAttempt) {
			return nil, domain.NewForbiddenError("test already attempted").WithKey("no_permission")
		}
		return nil, mapRepositoryError(err, "failed to create attempt")
	}

	questions := test.Questions
	if test.ShuffleQuestions {
		// A shuffled copy for this response only; the stored order is
		// untouched.
		questions = make([]domain.Question, len(test.Questions))
		copy(questions, test.Questions)
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	resp := &dto.StartTestResponse{
		TestID:    testID,
		Questions: make([]dto.AttemptQuestionResponse, 0, len(questions)),
	}
	for _, q := range questions {
		aq := dto.AttemptQuestionResponse{
			ID:   q.ID,
			Text: q.Text,
			Type: string(q.Type),
		}
		if q.Type == domain.QuestionMultipleChoice {
			aq.Options = q.Options
		}
		resp.Questions = append(resp.Questions, aq)
	}

	logger.Get().Info("Test started",
		zap.String("testID", testID),
		zap.String("attemptID", attempt.ID),
		zap.String("userID", userID))
	return resp, nil
}

// SubmitTest grades a submission and completes the attempt. Answer rows and
// the attempt update commit together or not at all.
func (s *attemptServiceImpl) SubmitTest(ctx context.Context, userID, testID string, req *dto.SubmitTestRequest) (*dto.SubmitTestResponse, error) {
	if errs := s.validator.ValidateSubmitRequest(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.gate.requireRole(ctx, userID, domain.RoleParticipant); err != nil {
		return nil, err
	}

	test, err := s.testRepo.GetTestByID(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load test")
	}
	if test == nil {
		return nil, domain.NewNotFoundError("test not found").WithKey("test_not_found")
	}

	attempt, err := s.attemptRepo.GetOpenAttempt(ctx, userID, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load attempt")
	}
	if attempt == nil {
		// Never started, or already submitted.
		return nil, domain.NewForbiddenError("no active attempt").WithKey("no_permission")
	}

	submitted := make([]domain.SubmittedAnswer, 0, len(req.Answers))
	for _, ans := range req.Answers {
		submitted = append(submitted, domain.SubmittedAnswer{
			QuestionID: ans.QuestionID,
			Answer:     ans.Answer,
			AnswerTime: ans.AnswerTime,
		})
	}

	result, err := domain.Grade(test.Questions, submitted)
	if err != nil {
		return nil, err
	}

	endTime := time.Now().UTC()
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, graded := range result.Answers {
			answer := &domain.Answer{
				ID:         util.NewULID(),
				AttemptID:  attempt.ID,
				QuestionID: graded.QuestionID,
				Answer:     graded.Answer,
				IsCorrect:  graded.IsCorrect,
				AnswerTime: graded.AnswerTime,
			}
			if err := s.attemptRepo.CreateAnswer(ctx, answer); err != nil {
				return err
			}
		}
		return s.attemptRepo.CompleteAttempt(ctx, attempt.ID, result.Score, endTime)
	})
	if err != nil {
		// CompleteAttempt only touches rows with end_time still NULL; no
		// rows means a concurrent submit won the race and finished first.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewForbiddenError("test already attempted").WithKey("no_permission")
		}
		return nil, mapRepositoryError(err, "failed to record submission")
	}

	s.invalidateStats(ctx, testID)

	resp := &dto.SubmitTestResponse{
		Score:          result.Score,
		CorrectAnswers: make([]dto.CorrectAnswerResponse, 0, len(result.Answers)),
	}
	for _, graded := range result.Answers {
		resp.CorrectAnswers = append(resp.CorrectAnswers, dto.CorrectAnswerResponse{
			QuestionID:    graded.QuestionID,
			CorrectAnswer: graded.CorrectAnswer,
		})
	}

	logger.Get().Info("Test submitted",
		zap.String("testID", testID),
		zap.String("attemptID", attempt.ID),
		zap.String("userID", userID),
		zap.Float64("score", result.Score))
	return resp, nil
}

// invalidateStats drops the cached aggregate for the test after a new
// submission. A cache failure is logged, not surfaced: the store is the
// source of truth.
func (s *attemptServiceImpl) invalidateStats(ctx context.Context, testID string) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Delete(ctx, cache.TestStatsKey(testID)); err != nil {
		logger.Get().Warn("Failed to invalidate stats cache",
			zap.String("testID", testID),
			zap.Error(err))
	}
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"testboard/internal/domain"
	"testboard/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newStatsFixtures() (*MockUserRepository, *MockTestRepository, *MockAttemptRepository) {
	mockUserRepo := new(MockUserRepository)
	mockTestRepo := new(MockTestRepository)
	mockAttemptRepo := new(MockAttemptRepository)

	owned := &domain.Test{ID: "test-1", CreatorID: "creator-1", Title: "Geography"}
	mockUserRepo.On("GetUserByID", mock.Anything, "creator-1").Return(creatorFixture(), nil)
	mockTestRepo.On("GetTestByID", mock.Anything, "test-1").Return(owned, nil)
	return mockUserRepo, mockTestRepo, mockAttemptRepo
}

func TestStatsService_GetTestStats_RoundsToOneDecimal(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, nil, 0)

	mockAttemptRepo.On("GetAverageScore", mock.Anything, "test-1").Return(66.666, nil)
	mockAttemptRepo.On("GetAverageCompletionSeconds", mock.Anything, "test-1").Return(125.04, nil)
	mockAttemptRepo.On("GetQuestionStats", mock.Anything, "test-1").Return([]domain.QuestionStats{
		{QuestionID: "q1", CorrectPercentage: 33.333, AverageTime: 4.55},
	}, nil)

	resp, err := svc.GetTestStats(context.Background(), "creator-1", "test-1")

	assert.NoError(t, err)
	assert.Equal(t, 66.7, resp.AverageScore)
	assert.Equal(t, 125.0, resp.CompletionTime)
	assert.Equal(t, 33.3, resp.Difficulty["question_q1"].CorrectPercentage)
	assert.Equal(t, 4.6, resp.Difficulty["question_q1"].AverageTime)
}

func TestStatsService_GetTestStats_NoAttempts(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, nil, 0)

	mockAttemptRepo.On("GetAverageScore", mock.Anything, "test-1").Return(0.0, nil)
	mockAttemptRepo.On("GetAverageCompletionSeconds", mock.Anything, "test-1").Return(0.0, nil)
	mockAttemptRepo.On("GetQuestionStats", mock.Anything, "test-1").Return([]domain.QuestionStats{}, nil)

	resp, err := svc.GetTestStats(context.Background(), "creator-1", "test-1")

	assert.NoError(t, err)
	assert.Equal(t, 0.0, resp.AverageScore)
	assert.Equal(t, 0.0, resp.CompletionTime)
	assert.Empty(t, resp.Difficulty)
}

func TestStatsService_GetTestStats_CacheHitSkipsStore(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	mockCache := new(MockCache)
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, mockCache, time.Minute)

	cached := dto.TestStatsResponse{AverageScore: 80.0, CompletionTime: 90.5}
	payload, _ := json.Marshal(cached)
	mockCache.On("Get", mock.Anything, "testboard:stats:test:test-1").Return(string(payload), nil)

	resp, err := svc.GetTestStats(context.Background(), "creator-1", "test-1")

	assert.NoError(t, err)
	assert.Equal(t, 80.0, resp.AverageScore)
	mockAttemptRepo.AssertNotCalled(t, "GetAverageScore", mock.Anything, mock.Anything)
}

func TestStatsService_GetTestStats_CacheMissPopulatesCache(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	mockCache := new(MockCache)
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, mockCache, time.Minute)

	mockCache.On("Get", mock.Anything, "testboard:stats:test:test-1").Return("", domain.ErrCacheMiss)
	mockAttemptRepo.On("GetAverageScore", mock.Anything, "test-1").Return(50.0, nil)
	mockAttemptRepo.On("GetAverageCompletionSeconds", mock.Anything, "test-1").Return(60.0, nil)
	mockAttemptRepo.On("GetQuestionStats", mock.Anything, "test-1").Return([]domain.QuestionStats{}, nil)
	mockCache.On("Set", mock.Anything, "testboard:stats:test:test-1", mock.Anything, time.Minute).Return(nil)

	resp, err := svc.GetTestStats(context.Background(), "creator-1", "test-1")

	assert.NoError(t, err)
	assert.Equal(t, 50.0, resp.AverageScore)
	mockCache.AssertExpectations(t)
}

func TestStatsService_GetTestStats_NotOwner(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTestRepo := new(MockTestRepository)
	mockAttemptRepo := new(MockAttemptRepository)
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, nil, 0)

	other := &domain.User{ID: "creator-2", Role: domain.RoleCreator}
	owned := &domain.Test{ID: "test-1", CreatorID: "creator-1"}
	mockUserRepo.On("GetUserByID", mock.Anything, "creator-2").Return(other, nil)
	mockTestRepo.On("GetTestByID", mock.Anything, "test-1").Return(owned, nil)

	_, err := svc.GetTestStats(context.Background(), "creator-2", "test-1")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeNotFound, domainErr.Code)
	mockAttemptRepo.AssertNotCalled(t, "GetAverageScore", mock.Anything, mock.Anything)
}

func TestStatsService_ExportTestStats_CSV(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, nil, 0)

	score := 75.0
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	mockAttemptRepo.On("GetAttemptRecords", mock.Anything, "test-1").Return([]domain.AttemptRecord{
		{UserID: "user-1", Score: &score, StartTime: start, EndTime: &end, CompletionSeconds: 120},
	}, nil)

	result, err := svc.ExportTestStats(context.Background(), "creator-1", "test-1", "csv")

	assert.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "test_test-1_stats.csv", result.Filename)
	body := string(result.Body)
	assert.Contains(t, body, "User ID,Score,Start Time,End Time,Completion Time (s)")
	assert.Contains(t, body, "user-1,75.0,2026-03-01T10:00:00Z,2026-03-01T10:02:00Z,120.0")
}

func TestStatsService_ExportTestStats_JSONKeepsOpenAttemptNulls(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, nil, 0)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mockAttemptRepo.On("GetAttemptRecords", mock.Anything, "test-1").Return([]domain.AttemptRecord{
		{UserID: "user-1", StartTime: start},
	}, nil)

	result, err := svc.ExportTestStats(context.Background(), "creator-1", "test-1", "json")

	assert.NoError(t, err)
	assert.Equal(t, "application/json", result.ContentType)
	assert.Equal(t, "test_test-1_stats.json", result.Filename)

	var rows []dto.AttemptExportRow
	assert.NoError(t, json.Unmarshal(result.Body, &rows))
	assert.Len(t, rows, 1)
	assert.Nil(t, rows[0].Score)
	assert.Nil(t, rows[0].EndTime)
}

func TestStatsService_ExportTestStats_Excel(t *testing.T) {
	mockUserRepo, mockTestRepo, mockAttemptRepo := newStatsFixtures()
	svc := NewStatsService(mockUserRepo, mockTestRepo, mockAttemptRepo, nil, 0)

	mockAttemptRepo.On("GetAttemptRecords", mock.Anything, "test-1").Return([]domain.AttemptRecord{}, nil)

	result, err := svc.ExportTestStats(context.Background(), "creator-1", "test-1", "excel")

	assert.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	assert.Equal(t, "test_test-1_stats.xlsx", result.Filename)
	assert.NotEmpty(t, result.Body)
}

func TestStatsService_ExportTestStats_UnknownFormat(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewStatsService(mockUserRepo, new(MockTestRepository), new(MockAttemptRepository), nil, 0)

	_, err := svc.ExportTestStats(context.Background(), "creator-1", "test-1", "xml")

	var verrs domain.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	mockUserRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
}

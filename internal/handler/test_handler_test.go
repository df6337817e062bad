package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/handler"
	"testboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// --- Manual Mocks ---

// MockTestService
type MockTestService struct {
	ListTestsFunc  func(ctx context.Context) (*dto.TestListResponse, error)
	GetTestFunc    func(ctx context.Context, userID, testID string) (*dto.TestDetailResponse, error)
	CreateTestFunc func(ctx context.Context, userID string, req *dto.TestRequest) (string, error)
	UpdateTestFunc func(ctx context.Context, userID, testID string, req *dto.TestRequest) error
	DeleteTestFunc func(ctx context.Context, userID, testID string) error
}

func (m *MockTestService) ListTests(ctx context.Context) (*dto.TestListResponse, error) {
	if m.ListTestsFunc != nil {
		return m.ListTestsFunc(ctx)
	}
	panic("MockTestService.ListTestsFunc not implemented")
}
func (m *MockTestService) GetTest(ctx context.Context, userID, testID string) (*dto.TestDetailResponse, error) {
	if m.GetTestFunc != nil {
		return m.GetTestFunc(ctx, userID, testID)
	}
	panic("MockTestService.GetTestFunc not implemented")
}
func (m *MockTestService) CreateTest(ctx context.Context, userID string, req *dto.TestRequest) (string, error) {
	if m.CreateTestFunc != nil {
		return m.CreateTestFunc(ctx, userID, req)
	}
	panic("MockTestService.CreateTestFunc not implemented")
}
func (m *MockTestService) UpdateTest(ctx context.Context, userID, testID string, req *dto.TestRequest) error {
	if m.UpdateTestFunc != nil {
		return m.UpdateTestFunc(ctx, userID, testID, req)
	}
	panic("MockTestService.UpdateTestFunc not implemented")
}
func (m *MockTestService) DeleteTest(ctx context.Context, userID, testID string) error {
	if m.DeleteTestFunc != nil {
		return m.DeleteTestFunc(ctx, userID, testID)
	}
	panic("MockTestService.DeleteTestFunc not implemented")
}

func newTestApp(svc *MockTestService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.Locale())
	// Auth is exercised separately; inject the caller directly here.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, "creator-1")
		return c.Next()
	})
	h := handler.NewTestHandler(svc)
	app.Get("/tests", h.List)
	app.Get("/tests/:id", h.Get)
	app.Post("/tests", h.Create)
	app.Put("/tests/:id", h.Update)
	app.Delete("/tests/:id", h.Delete)
	return app
}

func TestTestHandler_List(t *testing.T) {
	svc := &MockTestService{
		ListTestsFunc: func(ctx context.Context) (*dto.TestListResponse, error) {
			return &dto.TestListResponse{Tests: []dto.TestSummaryResponse{
				{ID: "test-1", Title: "Geography", QuestionCount: 3},
			}}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/tests", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.TestListResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Tests, 1)
	assert.Equal(t, 3, body.Tests[0].QuestionCount)
}

func TestTestHandler_Create_Localized(t *testing.T) {
	svc := &MockTestService{
		CreateTestFunc: func(ctx context.Context, userID string, req *dto.TestRequest) (string, error) {
			assert.Equal(t, "creator-1", userID)
			assert.Equal(t, "Geography", req.Title)
			return "test-1", nil
		},
	}
	app := newTestApp(svc)

	payload, _ := json.Marshal(dto.TestRequest{Title: "Geography"})
	req := httptest.NewRequest("POST", "/tests", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAcceptLanguage, "en")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.MutationResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Test created successfully", body.Message)
	assert.Equal(t, "test-1", body.TestID)
}

func TestTestHandler_Create_MalformedBody(t *testing.T) {
	app := newTestApp(&MockTestService{})

	req := httptest.NewRequest("POST", "/tests", bytes.NewReader([]byte("{not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTestHandler_Get_NotFoundMapped(t *testing.T) {
	svc := &MockTestService{
		GetTestFunc: func(ctx context.Context, userID, testID string) (*dto.TestDetailResponse, error) {
			return nil, domain.NewNotFoundError("test not found").WithKey("test_not_found")
		},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("GET", "/tests/ghost", nil)
	req.Header.Set(fiber.HeaderAcceptLanguage, "en")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body middleware.ErrorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(domain.CodeNotFound), body.Code)
	assert.Equal(t, "Test not found", body.Message)
}

func TestTestHandler_Get_NotFoundLocalizedRussianDefault(t *testing.T) {
	svc := &MockTestService{
		GetTestFunc: func(ctx context.Context, userID, testID string) (*dto.TestDetailResponse, error) {
			return nil, domain.NewNotFoundError("test not found").WithKey("test_not_found")
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/tests/ghost", nil))
	assert.NoError(t, err)

	var body middleware.ErrorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Тест не найден", body.Message)
}

func TestTestHandler_Update_ValidationErrorsListed(t *testing.T) {
	svc := &MockTestService{
		UpdateTestFunc: func(ctx context.Context, userID, testID string, req *dto.TestRequest) error {
			return domain.ValidationErrors{domain.NewMissingFieldError("title")}
		},
	}
	app := newTestApp(svc)

	payload, _ := json.Marshal(dto.TestRequest{})
	req := httptest.NewRequest("PUT", "/tests/test-1", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Errors, 1)
	assert.Equal(t, "title", body.Errors[0].Field)
}

func TestTestHandler_Delete_ForbiddenMapped(t *testing.T) {
	svc := &MockTestService{
		DeleteTestFunc: func(ctx context.Context, userID, testID string) error {
			return domain.NewForbiddenError("no permission").WithKey("no_permission")
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/tests/test-1", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/enquiry-service/internal/api/http"
	"github.com/spec-kit/enquiry-service/internal/api/http/handlers"
	"github.com/spec-kit/enquiry-service/internal/auth"
	"github.com/spec-kit/enquiry-service/internal/config"
	"github.com/spec-kit/enquiry-service/internal/domain"
	"github.com/spec-kit/enquiry-service/internal/events"
	"github.com/spec-kit/enquiry-service/internal/observability"
	"github.com/spec-kit/enquiry-service/internal/repository"
	"github.com/spec-kit/enquiry-service/internal/service"
)

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type enquiryRepoMock struct {
	mock.Mock
}

func (m *enquiryRepoMock) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	return m.Called(ctx, enquiry).Error(0)
}

func (m *enquiryRepoMock) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enquiry), args.Error(1)
}

func (m *enquiryRepoMock) List(ctx context.Context, filter repository.EnquiryFilter) ([]domain.Enquiry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Enquiry), args.Error(1)
}

func (m *enquiryRepoMock) Count(ctx context.Context, filter repository.EnquiryFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *enquiryRepoMock) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *enquiryRepoMock) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *enquiryRepoMock) TopPerformers(ctx context.Context, since time.Time, limit int) ([]domain.PerformerStat, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PerformerStat), args.Error(1)
}

type testEnv struct {
	app       *fiber.App
	users     *userRepoMock
	enquiries *enquiryRepoMock
	auth      *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := new(userRepoMock)
	enquiries := new(enquiryRepoMock)
	logger := zap.NewNop()

	authCfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}
	analyticsCfg := config.AnalyticsConfig{WindowDays: 7, TopLimit: 3, CacheTTLSeconds: 60}

	dispatcher := events.NewInMemoryDispatcher()
	authService := service.NewAuthService(authCfg, users)
	enquiryService := service.NewEnquiryService(enquiries, users, dispatcher)
	userService := service.NewUserService(authCfg, users)
	analyticsService := service.NewAnalyticsService(analyticsCfg, enquiries, nil, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), "*", 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("enquiry-service", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Enquiries:      handlers.NewEnquiriesHandler(enquiryService),
		Users:          handlers.NewUsersHandler(userService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})

	return &testEnv{app: app, users: users, enquiries: enquiries, auth: authService}
}

// tokenFor issues a token for the user and arranges for the auth middleware
// to resolve the same user on every request.
func (e *testEnv) tokenFor(t *testing.T, user *domain.User) string {
	t.Helper()
	token, _, err := e.auth.TokenManager().GenerateToken(user)
	assert.NoError(t, err)
	e.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	if len(raw) > 0 {
		assert.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("missing fields renders error body", func(t *testing.T) {
		env := newTestEnv(t)

		resp, body := doJSON(t, env.app, http.MethodPost, "/auth/register", "", map[string]string{
			"email": "jane@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.NotEmpty(t, body["error"])
	})

	t.Run("success returns token and staff user", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, pgx.ErrNoRows).Once()
		env.users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = "user-1"
		}).Return(nil).Once()

		resp, body := doJSON(t, env.app, http.MethodPost, "/auth/register", "", map[string]string{
			"name":     "Jane Doe",
			"email":    "jane@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, body["token"])

		user, ok := body["user"].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "staff", user["role"])
	})
}

func TestEnquiryRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/enquiries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestEnquiryListEnvelope(t *testing.T) {
	env := newTestEnv(t)
	staff := &domain.User{ID: "staff-1", Name: "Staff", Email: "staff@example.com", Role: domain.RoleStaff}
	token := env.tokenFor(t, staff)

	selfScoped := mock.MatchedBy(func(f repository.EnquiryFilter) bool {
		return f.AssignedTo != nil && *f.AssignedTo == staff.ID
	})
	env.enquiries.On("List", mock.Anything, selfScoped).Return([]domain.Enquiry{
		{ID: "enq-1", CustomerName: "ACME Corp", Status: domain.EnquiryStatusNew},
	}, nil).Once()
	env.enquiries.On("Count", mock.Anything, selfScoped).Return(1, nil).Once()

	resp, body := doJSON(t, env.app, http.MethodGet, "/enquiries?assignedTo=someone-else", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["limit"])

	data, ok := body["data"].([]any)
	assert.True(t, ok)
	assert.Len(t, data, 1)
	env.enquiries.AssertExpectations(t)
}

func TestEnquiryDeleteIsAdminOnly(t *testing.T) {
	t.Run("staff forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.tokenFor(t, &domain.User{ID: "staff-1", Role: domain.RoleStaff})

		resp, body := doJSON(t, env.app, http.MethodDelete, "/enquiries/enq-1", token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.NotEmpty(t, body["error"])
		env.enquiries.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})

	t.Run("admin deletes", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.tokenFor(t, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
		env.enquiries.On("SoftDelete", mock.Anything, "enq-1").Return(nil).Once()

		resp, body := doJSON(t, env.app, http.MethodDelete, "/enquiries/enq-1", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		env.enquiries.AssertExpectations(t)
	})
}

func TestUserRoutesAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, &domain.User{ID: "staff-1", Role: domain.RoleStaff})

	resp, body := doJSON(t, env.app, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestTopPerformersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})

	env.enquiries.On("TopPerformers", mock.Anything, mock.Anything, 3).Return([]domain.PerformerStat{
		{UserID: "staff-1", Name: "Jane", Email: "jane@example.com", Role: domain.RoleStaff, ClosedCount: 5},
	}, nil).Once()

	resp, body := doJSON(t, env.app, http.MethodGet, "/analytics/top-performers", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].([]any)
	assert.True(t, ok)
	assert.Len(t, data, 1)
	first := data[0].(map[string]any)
	assert.Equal(t, float64(5), first["closedCount"])
	env.enquiries.AssertExpectations(t)
}

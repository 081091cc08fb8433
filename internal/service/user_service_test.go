package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/enquiry-service/internal/domain"
	"github.com/spec-kit/enquiry-service/internal/service"
	apperrors "github.com/spec-kit/enquiry-service/pkg/util"
)

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name       string
		inputName  string
		email      string
		password   string
		role       domain.Role
		setupMocks func(r *UserRepoMock)
		wantStatus int
	}{
		{
			name:      "creates staff account",
			inputName: "John Smith",
			email:     "john@example.com",
			password:  "password123",
			role:      domain.RoleStaff,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, pgx.ErrNoRows).Once()
				r.On("Create", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
					return user.Role == domain.RoleStaff && user.PasswordHash != "password123"
				})).Return(nil).Once()
			},
		},
		{
			name:       "missing role",
			inputName:  "John Smith",
			email:      "john@example.com",
			password:   "password123",
			role:       "",
			setupMocks: func(r *UserRepoMock) {},
			wantStatus: 400,
		},
		{
			name:       "invalid role",
			inputName:  "John Smith",
			email:      "john@example.com",
			password:   "password123",
			role:       "superuser",
			setupMocks: func(r *UserRepoMock) {},
			wantStatus: 400,
		},
		{
			name:      "duplicate email conflicts",
			inputName: "John Smith",
			email:     "john@example.com",
			password:  "password123",
			role:      domain.RoleAdmin,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetByEmail", mock.Anything, "john@example.com").
					Return(&domain.User{ID: "user-1"}, nil).Once()
			},
			wantStatus: 409,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := service.NewUserService(testAuthConfig(), repo)

			user, err := svc.Create(context.Background(), tt.inputName, tt.email, tt.password, tt.role)
			if tt.wantStatus != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantStatus, apperrors.ToDomainError(err).HTTPStatus)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.role, user.Role)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	existing := func() *domain.User {
		return &domain.User{ID: "user-1", Name: "John Smith", Email: "john@example.com", Role: domain.RoleStaff}
	}

	t.Run("applies only submitted fields", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetByID", mock.Anything, "user-1").Return(existing(), nil).Once()
		repo.On("Update", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
			return user.Name == "Johnny" && user.Email == "john@example.com" && user.Role == domain.RoleAdmin
		})).Return(nil).Once()

		svc := service.NewUserService(testAuthConfig(), repo)
		user, err := svc.Update(context.Background(), "user-1", service.UserUpdateInput{
			Name: strPtr("Johnny"),
			Role: strPtr("admin"),
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetByID", mock.Anything, "user-1").Return(existing(), nil).Once()

		svc := service.NewUserService(testAuthConfig(), repo)
		_, err := svc.Update(context.Background(), "user-1", service.UserUpdateInput{Role: strPtr("root")})
		assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, pgx.ErrNoRows).Once()

		svc := service.NewUserService(testAuthConfig(), repo)
		_, err := svc.Update(context.Background(), "missing", service.UserUpdateInput{Name: strPtr("X")})
		assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("Delete", mock.Anything, "user-1").Return(nil).Once()

		svc := service.NewUserService(testAuthConfig(), repo)
		assert.NoError(t, svc.Delete(context.Background(), "user-1"))
		repo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("Delete", mock.Anything, "missing").Return(pgx.ErrNoRows).Once()

		svc := service.NewUserService(testAuthConfig(), repo)
		err := svc.Delete(context.Background(), "missing")
		assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
	})
}

package services_test

import (
	"context"
	"testing"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/hisaab-app/hisaab_backend/internal/core/services"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock UserRepository (based on UserService usage) ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	args := m.Called(ctx, userIDs)
	var users map[string]domain.User
	if args.Get(0) != nil {
		users = args.Get(0).(map[string]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error {
	args := m.Called(ctx, userID, deletedBy)
	return args.Error(0)
}

func TestCreateUserSuccess(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewUserService(mockRepo)

	mockRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == "Asha" && u.UserID != "" && u.CreatedBy == "creator-1"
	})).Return(nil)

	user, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{Name: "Asha"}, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.NotEmpty(t, user.UserID)
	mockRepo.AssertExpectations(t)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewUserService(mockRepo)

	existing := &domain.User{UserID: "u1", Email: "asha@example.com"}
	mockRepo.On("FindUserByEmail", mock.Anything, "asha@example.com").Return(existing, nil)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Name:  "Asha",
		Email: "asha@example.com",
	}, "creator-1")
	require.ErrorIs(t, err, services.ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
}

func TestGetUserByIDNotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewUserService(mockRepo)

	mockRepo.On("FindUserByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetUserByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewUserService(mockRepo)

	existing := &domain.User{UserID: "u1", Name: "Asha"}
	mockRepo.On("FindUserByID", mock.Anything, "u1").Return(existing, nil)
	mockRepo.On("MarkUserDeleted", mock.Anything, "u1", "admin").Return(nil)

	err := svc.DeleteUser(context.Background(), "u1", "admin")
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListUsersDefaultsLimit(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewUserService(mockRepo)

	mockRepo.On("ListUsers", mock.Anything, 20, 0).Return([]domain.User{}, nil)

	users, err := svc.ListUsers(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Empty(t, users)
	mockRepo.AssertExpectations(t)
}

package services

import (
	"context"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
)

// UserSvcFacade exposes participant management.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
	DeleteUser(ctx context.Context, userID string, deletedBy string) error
}

// AuthSvcFacade exposes registration and login.
type AuthSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

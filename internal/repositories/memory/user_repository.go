package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
)

// UserRepository is an in-memory user store with soft deletes.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

// SaveUser inserts or updates a user.
func (r *UserRepository) SaveUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

// FindUserByID retrieves an active user by ID.
func (r *UserRepository) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok || user.DeletedAt != nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	cp := user
	return &cp, nil
}

// FindUsersByIDs retrieves the active users among the given IDs.
func (r *UserRepository) FindUsersByIDs(_ context.Context, userIDs []string) (map[string]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]domain.User, len(userIDs))
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok && user.DeletedAt == nil {
			found[id] = user
		}
	}
	return found, nil
}

// FindUserByEmail retrieves an active user by email.
func (r *UserRepository) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email && user.DeletedAt == nil {
			cp := user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, apperrors.ErrNotFound)
}

// ListUsers retrieves active users, most recently created first.
func (r *UserRepository) ListUsers(_ context.Context, limit int, offset int) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if user.DeletedAt == nil {
			active = append(active, user)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.After(active[j].CreatedAt)
		}
		return active[i].UserID < active[j].UserID
	})

	if offset >= len(active) {
		return []domain.User{}, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return append([]domain.User(nil), active[offset:end]...), nil
}

// MarkUserDeleted soft-deletes a user.
func (r *UserRepository) MarkUserDeleted(_ context.Context, userID string, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok || user.DeletedAt != nil {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	now := time.Now()
	user.DeletedAt = &now
	user.LastUpdatedAt = now
	user.LastUpdatedBy = deletedBy
	r.users[userID] = user
	return nil
}

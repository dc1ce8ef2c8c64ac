package memory

import (
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider creates an in-memory repository set. All state is lost
// on process exit; intended for tests and local development.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo: NewLedgerRepository(),
		UserRepo:   NewUserRepository(),
	}
}

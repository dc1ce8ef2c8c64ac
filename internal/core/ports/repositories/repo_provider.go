package repositories

// RepositoryProvider bundles the repository facades a service container needs.
// Both the pgsql and memory packages produce one.
type RepositoryProvider struct {
	LedgerRepo LedgerRepositoryFacade
	UserRepo   UserRepositoryFacade
}

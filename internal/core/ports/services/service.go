package services

// ServiceContainer bundles every service facade for injection into the
// HTTP layer.
type ServiceContainer struct {
	User           UserSvcFacade
	Auth           AuthSvcFacade
	Ledger         LedgerSvcFacade
	Balance        BalanceSvcFacade
	Reconciliation ReconciliationSvcFacade
	History        HistorySvcFacade
}

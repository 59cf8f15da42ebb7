package repositories

// RepositoryContainer bundles every repository facade plus the transaction manager
// for injection into the service layer.
type RepositoryContainer struct {
	TxManager   TransactionManager
	Account     AccountRepositoryFacade
	Hold        HoldRepositoryFacade
	Transaction TransactionRepositoryFacade
	Limit       LimitRepositoryFacade
	Customer    CustomerReader
}

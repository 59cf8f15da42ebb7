package services

// ServiceContainer bundles every service facade for handler registration.
type ServiceContainer struct {
	Balance BalanceSvcFacade
	Hold    HoldSvcFacade
	Posting PostingSvcFacade
	Limit   LimitSvcFacade
}

package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
	"github.com/nimbusbank/corebank/internal/dto"
)

// fakeTx satisfies pgx.Tx for services under test. Repository calls are mocked,
// so none of the embedded interface's methods are ever reached.
type fakeTx struct {
	pgx.Tx
}

// MockTxManager is a mock type for the TransactionManager interface
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectUnitOfWork primes a MockTxManager for one Begin plus any number of
// rollbacks (the deferred rollback after commit is a no-op).
func expectUnitOfWork(m *MockTxManager, tx pgx.Tx) {
	m.On("Begin", mock.Anything).Return(tx, nil).Once()
	m.On("Rollback", mock.Anything, tx).Return(nil).Maybe()
}

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accountID string, currentBalance, availableBalance decimal.Decimal, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, currentBalance, availableBalance, updatedBy, now)
	return args.Error(0)
}

// MockHoldRepository is a mock type for the HoldRepositoryFacade interface
type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) FindHoldByID(ctx context.Context, holdID string) (*domain.AccountHold, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountHold), args.Error(1)
}

func (m *MockHoldRepository) ListHoldsByAccount(ctx context.Context, accountID string) ([]domain.AccountHold, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountHold), args.Error(1)
}

func (m *MockHoldRepository) CountActiveHolds(ctx context.Context, accountID string) (int, decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockHoldRepository) SaveHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.AccountHold) error {
	args := m.Called(ctx, tx, hold)
	return args.Error(0)
}

func (m *MockHoldRepository) FindHoldByIDForUpdate(ctx context.Context, tx pgx.Tx, holdID string) (*domain.AccountHold, error) {
	args := m.Called(ctx, tx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountHold), args.Error(1)
}

func (m *MockHoldRepository) UpdateHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.AccountHold, fromStatuses []domain.HoldStatus) error {
	args := m.Called(ctx, tx, hold, fromStatuses)
	return args.Error(0)
}

func (m *MockHoldRepository) SumActiveHoldAmountsInTx(ctx context.Context, tx pgx.Tx, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockHoldRepository) FindExpiredHoldCandidates(ctx context.Context, asOf time.Time) ([]portsrepo.SweptHold, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.SweptHold), args.Error(1)
}

func (m *MockHoldRepository) SweepAccountExpiredInTx(ctx context.Context, tx pgx.Tx, accountID string, asOf time.Time, releasedBy string) ([]portsrepo.SweptHold, error) {
	args := m.Called(ctx, tx, accountID, asOf, releasedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.SweptHold), args.Error(1)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListAuditEntries(ctx context.Context, transactionID string) ([]domain.TransactionAuditEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionAuditEntry), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, fromStatus domain.TransactionStatus) error {
	args := m.Called(ctx, tx, txn, fromStatus)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveAuditEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.TransactionAuditEntry) error {
	args := m.Called(ctx, tx, entries)
	return args.Error(0)
}

// MockLimitRepository is a mock type for the LimitRepositoryFacade interface
type MockLimitRepository struct {
	mock.Mock
}

func (m *MockLimitRepository) FindChain(ctx context.Context, terminalID string) (*domain.LimitChain, error) {
	args := m.Called(ctx, terminalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LimitChain), args.Error(1)
}

func (m *MockLimitRepository) FindChainForUpdate(ctx context.Context, tx pgx.Tx, terminalID string) (*domain.LimitChain, error) {
	args := m.Called(ctx, tx, terminalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LimitChain), args.Error(1)
}

func (m *MockLimitRepository) IncrementDailyVolumesInTx(ctx context.Context, tx pgx.Tx, chain *domain.LimitChain, amount decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, chain, amount, now)
	return args.Error(0)
}

func (m *MockLimitRepository) ResetDailyVolumes(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

// MockCustomerRepository is a mock type for the CustomerReader interface
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockBalanceService is a mock type for the BalanceSvcFacade interface
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalanceSummary(ctx context.Context, accountID string) (*dto.BalanceResponse, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceResponse), args.Error(1)
}

func (m *MockBalanceService) ApplyPostingInTx(ctx context.Context, tx pgx.Tx, account *domain.Account, signedAmount decimal.Decimal, updatedBy string) error {
	args := m.Called(ctx, tx, account, signedAmount, updatedBy)
	return args.Error(0)
}

func (m *MockBalanceService) RederiveAvailableInTx(ctx context.Context, tx pgx.Tx, account *domain.Account, updatedBy string) error {
	args := m.Called(ctx, tx, account, updatedBy)
	return args.Error(0)
}

// MockLimitService is a mock type for the LimitSvcFacade interface
type MockLimitService struct {
	mock.Mock
}

func (m *MockLimitService) CheckAndReserveInTx(ctx context.Context, tx pgx.Tx, terminalID string, amount decimal.Decimal) (*domain.LimitChain, error) {
	args := m.Called(ctx, tx, terminalID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LimitChain), args.Error(1)
}

func (m *MockLimitService) ResetDaily(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLimitService) GetUtilization(ctx context.Context, terminalID string) (*dto.LimitChainResponse, error) {
	args := m.Called(ctx, terminalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LimitChainResponse), args.Error(1)
}

package inventory

import (
	"context"

	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/picking"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed
// or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories that take
// part in a ledger write. All repositories returned share the same
// underlying database transaction, which is what makes a ledger append
// plus state update observable only as a single unit.
type TransactionalRepositories interface {
	// StateRepo returns the inventory state repository scoped to the current transaction
	StateRepo() inventory.InventoryStateRepository
	// TransactionRepo returns the ledger repository scoped to the current transaction
	TransactionRepo() inventory.TransactionRepository
	// PickingRepo returns the picking task repository scoped to the current
	// transaction, used by task completion to flip LedgerApplied flags in
	// the same unit as the ledger writes
	PickingRepo() picking.PickingTaskRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	stateRepo       inventory.InventoryStateRepository
	transactionRepo inventory.TransactionRepository
	pickingRepo     picking.PickingTaskRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stateRepo inventory.InventoryStateRepository,
	transactionRepo inventory.TransactionRepository,
	pickingRepo picking.PickingTaskRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stateRepo:       stateRepo,
		transactionRepo: transactionRepo,
		pickingRepo:     pickingRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StateRepo returns the inventory state repository.
func (s *NoOpTransactionScope) StateRepo() inventory.InventoryStateRepository {
	return s.stateRepo
}

// TransactionRepo returns the ledger repository.
func (s *NoOpTransactionScope) TransactionRepo() inventory.TransactionRepository {
	return s.transactionRepo
}

// PickingRepo returns the picking task repository.
func (s *NoOpTransactionScope) PickingRepo() picking.PickingTaskRepository {
	return s.pickingRepo
}

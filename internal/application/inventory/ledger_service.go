package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// maxApplyRetries bounds optimistic-conflict retries on a single apply
const maxApplyRetries = 3

// LedgerService posts stock movements. Every mutation of InventoryState
// flows through Apply so that a ledger entry and its state update always
// commit as one unit, with BeforeQty equal to the previous AfterQty.
type LedgerService struct {
	scope          TransactionScope
	allocator      shared.CodeAllocator
	partRepo       catalog.PartRepository
	stateRepo      inventory.InventoryStateRepository
	txRepo         inventory.TransactionRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	allocator shared.CodeAllocator,
	partRepo catalog.PartRepository,
	stateRepo inventory.InventoryStateRepository,
	txRepo inventory.TransactionRepository,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		scope:     scope,
		allocator: allocator,
		partRepo:  partRepo,
		stateRepo: stateRepo,
		txRepo:    txRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Apply posts one stock movement: it reads the part's state, computes the
// after quantity through the domain rules, appends the ledger entry and
// saves the state under an optimistic version check, all inside a single
// storage transaction. Version conflicts are retried with a fresh read.
func (s *LedgerService) Apply(ctx context.Context, req ApplyRequest) (*TransactionResponse, error) {
	txType := inventory.TransactionType(req.Type)
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}

	reference := inventory.Reference{
		Type: inventory.ReferenceType(req.ReferenceType),
		ID:   req.ReferenceID,
	}
	if req.ReferenceType == "" {
		reference = inventory.ManualReference()
	}
	if err := reference.Validate(); err != nil {
		return nil, err
	}

	part, err := s.partRepo.FindByID(ctx, req.PartID)
	if err != nil {
		return nil, err
	}
	if !part.IsActive() {
		return nil, shared.NewDomainError("PART_INACTIVE", "Cannot post transactions against an inactive part")
	}

	tx, err := s.applyWithRetry(ctx, part, txType, req, reference)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ledger entry applied",
		zap.String("code", tx.Code),
		zap.String("type", tx.Type.String()),
		zap.String("part_code", part.Code),
		zap.String("before", tx.BeforeQty.String()),
		zap.String("after", tx.AfterQty.String()))

	return ToTransactionResponse(tx), nil
}

func (s *LedgerService) applyWithRetry(
	ctx context.Context,
	part *catalog.Part,
	txType inventory.TransactionType,
	req ApplyRequest,
	reference inventory.Reference,
) (*inventory.Transaction, error) {
	var lastErr error

	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		tx, err := s.applyOnce(ctx, part, txType, req, reference)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("apply conflict, retrying",
			zap.String("part_code", part.Code),
			zap.Int("attempt", attempt+1))
	}

	return nil, lastErr
}

// applyOnce runs one read-compute-write pass inside a storage transaction.
// The optimistic version check on the state row serializes concurrent
// appliers per part; the loser re-reads and retries.
func (s *LedgerService) applyOnce(
	ctx context.Context,
	part *catalog.Part,
	txType inventory.TransactionType,
	req ApplyRequest,
	reference inventory.Reference,
) (*inventory.Transaction, error) {
	code, err := s.allocator.Next(ctx, txType.CodePrefix())
	if err != nil {
		return nil, err
	}

	var (
		tx    *inventory.Transaction
		state *inventory.InventoryState
	)

	// TRANSFER_IN documents the arrival half of a movement whose counted
	// stock already left via TRANSFER_OUT. The state row is not touched,
	// so there is nothing to save under the lock.
	recordOnly := txType == inventory.TransactionTypeTransferIn

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var execErr error
		state, execErr = repos.StateRepo().GetOrCreate(ctx, req.PartID)
		if execErr != nil {
			return execErr
		}

		var before decimal.Decimal
		switch txType {
		case inventory.TransactionTypeInbound:
			before, execErr = state.ApplyInbound(req.Quantity)
		case inventory.TransactionTypeOutbound, inventory.TransactionTypeTransferOut:
			before, execErr = state.ApplyOutbound(req.Quantity)
		case inventory.TransactionTypeAdjustment:
			before, execErr = state.ApplyAdjustment(req.Quantity)
		case inventory.TransactionTypeTransferIn:
			before = state.CurrentQty
		}
		if execErr != nil {
			return execErr
		}

		tx, execErr = inventory.NewTransaction(code, req.PartID, txType, req.Quantity, before, state.CurrentQty, reference)
		if execErr != nil {
			return execErr
		}
		tx.WithReason(req.Reason).WithPerformedBy(req.PerformedBy)
		if req.TransactionDate != nil {
			tx.WithTransactionDate(*req.TransactionDate)
		}

		if execErr = repos.TransactionRepo().Create(ctx, tx); execErr != nil {
			return execErr
		}
		if recordOnly {
			return nil
		}
		return repos.StateRepo().SaveWithLock(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	if !recordOnly {
		s.publishStateEvents(ctx, state, part)
	}

	return tx, nil
}

// Transfer posts a TRANSFER_OUT/TRANSFER_IN pair. Only the outbound half
// moves counted stock; the inbound half documents the arrival.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) ([]*TransactionResponse, error) {
	out, err := s.Apply(ctx, ApplyRequest{
		PartID:      req.PartID,
		Type:        inventory.TransactionTypeTransferOut.String(),
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		PerformedBy: req.PerformedBy,
	})
	if err != nil {
		return nil, err
	}

	in, err := s.Apply(ctx, ApplyRequest{
		PartID:        req.PartID,
		Type:          inventory.TransactionTypeTransferIn.String(),
		Quantity:      req.Quantity,
		ReferenceType: inventory.ReferenceTypeManual.String(),
		Reason:        req.Reason,
		PerformedBy:   req.PerformedBy,
	})
	if err != nil {
		return nil, err
	}

	return []*TransactionResponse{out, in}, nil
}

// GetStateByPart returns the current stock position of a part
func (s *LedgerService) GetStateByPart(ctx context.Context, partID uuid.UUID) (*StateResponse, error) {
	state, err := s.stateRepo.FindByPartID(ctx, partID)
	if err != nil {
		return nil, err
	}
	return ToStateResponse(state), nil
}

// ListStates returns paginated stock positions
func (s *LedgerService) ListStates(ctx context.Context, filter StateListFilter) ([]StateResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	f.OrderBy = filter.OrderBy
	f.OrderDir = filter.OrderDir

	states, err := s.stateRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stateRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StateResponse, 0, len(states))
	for idx := range states {
		responses = append(responses, *ToStateResponse(&states[idx]))
	}
	return responses, total, nil
}

// ListTransactions returns a paginated, filtered view of the ledger
func (s *LedgerService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	f := inventory.TransactionFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.OrderBy = filter.OrderBy
	f.OrderDir = filter.OrderDir
	f.PartID = filter.PartID
	f.DateFrom = filter.DateFrom
	f.DateTo = filter.DateTo
	f.ReferenceID = filter.ReferenceID

	if filter.Type != "" {
		txType := inventory.TransactionType(filter.Type)
		if !txType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
		}
		f.Type = &txType
	}
	if filter.ReferenceType != "" {
		refType := inventory.ReferenceType(filter.ReferenceType)
		if !refType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_REFERENCE_TYPE", "Invalid reference type")
		}
		f.ReferenceType = &refType
	}

	txs, err := s.txRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, 0, len(txs))
	for idx := range txs {
		responses = append(responses, *ToTransactionResponse(&txs[idx]))
	}
	return responses, total, nil
}

// GetTransactionByCode returns one ledger entry by its code
func (s *LedgerService) GetTransactionByCode(ctx context.Context, code string) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponse(tx), nil
}

// publishStateEvents flushes the aggregate's domain events and raises a
// safety-stock alert when the movement left on-hand below the threshold
func (s *LedgerService) publishStateEvents(ctx context.Context, state *inventory.InventoryState, part *catalog.Part) {
	if state.IsBelowSafetyStock(part.SafetyStock) {
		state.AddDomainEvent(inventory.NewStockBelowSafetyEvent(state, part.Code, part.SafetyStock))
	}

	if s.eventPublisher == nil {
		state.ClearDomainEvents()
		return
	}

	for _, event := range state.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	state.ClearDomainEvents()
}

// VerifyLedgerConsistency recomputes a part's on-hand figure from the
// full ledger and compares it with the state row
func (s *LedgerService) VerifyLedgerConsistency(ctx context.Context, partID uuid.UUID) (bool, error) {
	state, err := s.stateRepo.FindByPartID(ctx, partID)
	if err != nil {
		return false, err
	}
	sum, err := s.txRepo.SumSignedQuantityByPartID(ctx, partID)
	if err != nil {
		return false, err
	}
	return state.CurrentQty.Equal(sum), nil
}

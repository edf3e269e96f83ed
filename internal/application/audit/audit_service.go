package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mims/backend/internal/domain/audit"
	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// snapshotPageSize bounds how many parts an ALL-scope audit pulls per page
const snapshotPageSize = 500

// AuditService runs audit campaigns: snapshot, count, complete, approve.
// It never writes inventory; discrepancies are fixed with explicit
// adjustment transactions posted through the ledger.
type AuditService struct {
	allocator      shared.CodeAllocator
	auditRepo      audit.AuditRepository
	partRepo       catalog.PartRepository
	stateRepo      inventory.InventoryStateRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(
	allocator shared.CodeAllocator,
	auditRepo audit.AuditRepository,
	partRepo catalog.PartRepository,
	stateRepo inventory.InventoryStateRepository,
	logger *zap.Logger,
) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		allocator: allocator,
		auditRepo: auditRepo,
		partRepo:  partRepo,
		stateRepo: stateRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AuditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateAudit opens a campaign and snapshots system quantities at creation
// time. ALL scope covers every active part; PARTIAL covers the requested
// part IDs.
func (s *AuditService) CreateAudit(ctx context.Context, req CreateAuditRequest) (*AuditResponse, error) {
	scope := audit.AuditScope(req.Scope)
	if !scope.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCOPE", "Audit scope must be ALL or PARTIAL")
	}

	auditDate := time.Now()
	if req.AuditDate != nil && !req.AuditDate.IsZero() {
		auditDate = *req.AuditDate
	}

	parts, err := s.resolveParts(ctx, scope, req.PartIDs)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, shared.NewDomainError("EMPTY_AUDIT", "Audit has no parts to count")
	}

	// Audit codes carry the campaign month, e.g. AUD2608-0001.
	code, err := s.allocator.Next(ctx, "AUD"+auditDate.Format("0601"))
	if err != nil {
		return nil, err
	}

	record, err := audit.NewAuditRecord(code, scope, req.AuditType, auditDate, req.Performer)
	if err != nil {
		return nil, err
	}

	quantities, err := s.snapshotQuantities(ctx, parts)
	if err != nil {
		return nil, err
	}
	for idx := range parts {
		part := &parts[idx]
		if err := record.AddItem(part.ID, part.Code, part.Name, quantities[part.ID]); err != nil {
			return nil, err
		}
	}

	if err := s.auditRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, record)
	s.logger.Info("audit created",
		zap.String("code", record.Code),
		zap.String("scope", string(record.Scope)),
		zap.Int("items", record.TotalItems))

	return ToAuditResponse(record, true), nil
}

func (s *AuditService) resolveParts(ctx context.Context, scope audit.AuditScope, partIDs []uuid.UUID) ([]catalog.Part, error) {
	if scope == audit.AuditScopePartial {
		if len(partIDs) == 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "A partial audit needs part IDs")
		}
		parts, err := s.partRepo.FindByIDs(ctx, partIDs)
		if err != nil {
			return nil, err
		}
		if len(parts) != len(partIDs) {
			return nil, shared.NewDomainError("PART_NOT_FOUND", "One or more parts do not exist")
		}
		return parts, nil
	}

	all := make([]catalog.Part, 0)
	filter := shared.Filter{Page: 1, PageSize: snapshotPageSize}
	for {
		page, err := s.partRepo.FindActive(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < filter.PageSize {
			return all, nil
		}
		filter.Page++
	}
}

func (s *AuditService) snapshotQuantities(ctx context.Context, parts []catalog.Part) (map[uuid.UUID]decimal.Decimal, error) {
	partIDs := make([]uuid.UUID, 0, len(parts))
	for idx := range parts {
		partIDs = append(partIDs, parts[idx].ID)
	}

	states, err := s.stateRepo.FindByPartIDs(ctx, partIDs)
	if err != nil {
		return nil, err
	}

	// Parts without a state row have never moved; they count as zero.
	quantities := make(map[uuid.UUID]decimal.Decimal, len(parts))
	for _, id := range partIDs {
		quantities[id] = decimal.Zero
	}
	for idx := range states {
		quantities[states[idx].PartID] = states[idx].CurrentQty
	}
	return quantities, nil
}

// GetAudit returns one audit with its items
func (s *AuditService) GetAudit(ctx context.Context, auditID uuid.UUID) (*AuditResponse, error) {
	record, err := s.auditRepo.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	return ToAuditResponse(record, true), nil
}

// ListAudits returns paginated audits
func (s *AuditService) ListAudits(ctx context.Context, filter AuditListFilter) ([]AuditResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search

	var (
		records []audit.AuditRecord
		err     error
	)
	if filter.Status != "" {
		status := audit.AuditStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid audit status")
		}
		records, err = s.auditRepo.FindByStatus(ctx, status, f)
	} else {
		records, err = s.auditRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.auditRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AuditResponse, 0, len(records))
	for idx := range records {
		responses = append(responses, *ToAuditResponse(&records[idx], false))
	}
	return responses, total, nil
}

// RecordCount enters the physical count for one item. Recounting is
// allowed while the audit is in progress; aggregates follow the latest
// count.
func (s *AuditService) RecordCount(ctx context.Context, itemID uuid.UUID, req RecordCountRequest) (*AuditResponse, error) {
	record, err := s.auditRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if _, err := record.RecordCount(itemID, req.CountedQty, req.Notes); err != nil {
		return nil, err
	}

	if err := s.auditRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	return ToAuditResponse(record, true), nil
}

// Complete ends the counting phase
func (s *AuditService) Complete(ctx context.Context, auditID uuid.UUID) (*AuditResponse, error) {
	record, err := s.auditRepo.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}

	if err := record.Complete(); err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, record)
	s.logger.Info("audit completed",
		zap.String("code", record.Code),
		zap.Int("counted", record.CountedItems()),
		zap.Int("discrepancies", record.DiscrepancyItems))

	return ToAuditResponse(record, true), nil
}

// Approve signs off a completed audit. Inventory is untouched.
func (s *AuditService) Approve(ctx context.Context, auditID uuid.UUID, req ApproveRequest) (*AuditResponse, error) {
	record, err := s.auditRepo.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}

	if err := record.Approve(req.ApprovedBy); err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("audit approved",
		zap.String("code", record.Code),
		zap.String("approved_by", req.ApprovedBy))

	return ToAuditResponse(record, true), nil
}

func (s *AuditService) publishEvents(ctx context.Context, record *audit.AuditRecord) {
	if s.eventPublisher == nil {
		record.ClearDomainEvents()
		return
	}
	for _, event := range record.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	record.ClearDomainEvents()
}

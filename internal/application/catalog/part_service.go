package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// StateInitializer opens the zero stock position for a new part.
type StateInitializer interface {
	GetOrCreate(ctx context.Context, partID uuid.UUID) (*inventory.InventoryState, error)
}

// PartService manages the part master
type PartService struct {
	partRepo       catalog.PartRepository
	states         StateInitializer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPartService creates a new PartService
func NewPartService(partRepo catalog.PartRepository, logger *zap.Logger) *PartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartService{
		partRepo: partRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PartService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetStateInitializer makes CreatePart open the part's zero stock position.
// Without one, the state row is still created lazily at first ledger use.
func (s *PartService) SetStateInitializer(states StateInitializer) {
	s.states = states
}

// CreatePart creates a part. Part codes are unique; duplicates are
// rejected before touching storage.
func (s *PartService) CreatePart(ctx context.Context, req CreatePartRequest) (*PartResponse, error) {
	exists, err := s.partRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	part, err := catalog.NewPart(req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if err := part.Update(req.Name, req.Specification, req.Category); err != nil {
		return nil, err
	}
	if err := applyNumbers(part, req.SafetyStock, req.MinOrderQty, req.UnitPrice); err != nil {
		return nil, err
	}

	if err := s.partRepo.Save(ctx, part); err != nil {
		return nil, err
	}
	if s.states != nil {
		if _, err := s.states.GetOrCreate(ctx, part.ID); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, part)
	s.logger.Info("part created", zap.String("code", part.Code))

	return ToPartResponse(part), nil
}

// UpdatePart updates a part's master data
func (s *PartService) UpdatePart(ctx context.Context, partID uuid.UUID, req UpdatePartRequest) (*PartResponse, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, err
	}

	if err := part.Update(req.Name, req.Specification, req.Category); err != nil {
		return nil, err
	}
	if req.Unit != "" {
		if err := part.SetUnit(req.Unit); err != nil {
			return nil, err
		}
	}
	if err := applyNumbers(part, req.SafetyStock, req.MinOrderQty, req.UnitPrice); err != nil {
		return nil, err
	}

	if err := s.partRepo.SaveWithLock(ctx, part); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, part)
	return ToPartResponse(part), nil
}

// GetPart returns one part by ID
func (s *PartService) GetPart(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	return ToPartResponse(part), nil
}

// GetPartByCode returns one part by code
func (s *PartService) GetPartByCode(ctx context.Context, code string) (*PartResponse, error) {
	part, err := s.partRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return ToPartResponse(part), nil
}

// ListParts returns paginated parts
func (s *PartService) ListParts(ctx context.Context, filter PartListFilter) ([]PartResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search

	var (
		parts []catalog.Part
		err   error
	)
	if filter.ActiveOnly {
		parts, err = s.partRepo.FindActive(ctx, f)
	} else {
		parts, err = s.partRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.partRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PartResponse, 0, len(parts))
	for idx := range parts {
		responses = append(responses, *ToPartResponse(&parts[idx]))
	}
	return responses, total, nil
}

// ActivatePart brings a deactivated part back into use
func (s *PartService) ActivatePart(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	return s.setStatus(ctx, partID, func(part *catalog.Part) error { return part.Activate() })
}

// DeactivatePart soft-deletes a part. Existing ledger history stays; new
// movements against the part are rejected.
func (s *PartService) DeactivatePart(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	return s.setStatus(ctx, partID, func(part *catalog.Part) error { return part.Deactivate() })
}

func (s *PartService) setStatus(ctx context.Context, partID uuid.UUID, change func(*catalog.Part) error) (*PartResponse, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if err := change(part); err != nil {
		return nil, err
	}
	if err := s.partRepo.SaveWithLock(ctx, part); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, part)
	return ToPartResponse(part), nil
}

func applyNumbers(part *catalog.Part, safetyStock, minOrderQty, unitPrice *decimal.Decimal) error {
	if safetyStock != nil {
		if err := part.SetSafetyStock(*safetyStock); err != nil {
			return err
		}
	}
	if minOrderQty != nil {
		if err := part.SetMinOrderQty(*minOrderQty); err != nil {
			return err
		}
	}
	if unitPrice != nil {
		if err := part.SetUnitPrice(*unitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (s *PartService) publishEvents(ctx context.Context, part *catalog.Part) {
	if s.eventPublisher == nil {
		part.ClearDomainEvents()
		return
	}
	for _, event := range part.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	part.ClearDomainEvents()
}

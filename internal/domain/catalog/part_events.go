package catalog

import (
	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePart = "Part"

// Event type constants
const (
	EventTypePartCreated       = "PartCreated"
	EventTypePartUpdated       = "PartUpdated"
	EventTypePartStatusChanged = "PartStatusChanged"
)

// PartCreatedEvent is published when a new part is created
type PartCreatedEvent struct {
	shared.BaseDomainEvent
	PartID uuid.UUID `json:"part_id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Unit   string    `json:"unit"`
}

// NewPartCreatedEvent creates a new PartCreatedEvent
func NewPartCreatedEvent(part *Part) *PartCreatedEvent {
	return &PartCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartCreated, AggregateTypePart, part.ID),
		PartID:          part.ID,
		Code:            part.Code,
		Name:            part.Name,
		Unit:            part.Unit,
	}
}

// PartUpdatedEvent is published when a part's master data is updated
type PartUpdatedEvent struct {
	shared.BaseDomainEvent
	PartID   uuid.UUID `json:"part_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
}

// NewPartUpdatedEvent creates a new PartUpdatedEvent
func NewPartUpdatedEvent(part *Part) *PartUpdatedEvent {
	return &PartUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartUpdated, AggregateTypePart, part.ID),
		PartID:          part.ID,
		Code:            part.Code,
		Name:            part.Name,
		Category:        part.Category,
	}
}

// PartStatusChangedEvent is published when a part is activated or deactivated
type PartStatusChangedEvent struct {
	shared.BaseDomainEvent
	PartID    uuid.UUID  `json:"part_id"`
	Code      string     `json:"code"`
	OldStatus PartStatus `json:"old_status"`
	NewStatus PartStatus `json:"new_status"`
}

// NewPartStatusChangedEvent creates a new PartStatusChangedEvent
func NewPartStatusChangedEvent(part *Part, oldStatus, newStatus PartStatus) *PartStatusChangedEvent {
	return &PartStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartStatusChanged, AggregateTypePart, part.ID),
		PartID:          part.ID,
		Code:            part.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

package audit

import (
	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

const AggregateTypeAuditRecord = "AuditRecord"

const (
	EventTypeAuditCreated   = "AuditCreated"
	EventTypeAuditCompleted = "AuditCompleted"
)

// AuditCreatedEvent is published when a count campaign starts
type AuditCreatedEvent struct {
	shared.BaseDomainEvent
	AuditID uuid.UUID  `json:"audit_id"`
	Code    string     `json:"code"`
	Scope   AuditScope `json:"scope"`
}

// NewAuditCreatedEvent creates a new AuditCreatedEvent
func NewAuditCreatedEvent(record *AuditRecord) *AuditCreatedEvent {
	return &AuditCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuditCreated, AggregateTypeAuditRecord, record.ID),
		AuditID:         record.ID,
		Code:            record.Code,
		Scope:           record.Scope,
	}
}

// AuditCompletedEvent is published when counting finishes
type AuditCompletedEvent struct {
	shared.BaseDomainEvent
	AuditID          uuid.UUID `json:"audit_id"`
	Code             string    `json:"code"`
	TotalItems       int       `json:"total_items"`
	MatchedItems     int       `json:"matched_items"`
	DiscrepancyItems int       `json:"discrepancy_items"`
}

// NewAuditCompletedEvent creates a new AuditCompletedEvent
func NewAuditCompletedEvent(record *AuditRecord) *AuditCompletedEvent {
	return &AuditCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAuditCompleted, AggregateTypeAuditRecord, record.ID),
		AuditID:          record.ID,
		Code:             record.Code,
		TotalItems:       record.TotalItems,
		MatchedItems:     record.MatchedItems,
		DiscrepancyItems: record.DiscrepancyItems,
	}
}

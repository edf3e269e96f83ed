package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// AuditStatus represents the status of an audit campaign
type AuditStatus string

const (
	AuditStatusInProgress AuditStatus = "IN_PROGRESS"
	AuditStatusCompleted  AuditStatus = "COMPLETED"
	AuditStatusApproved   AuditStatus = "APPROVED"
)

// IsValid checks if the status is a valid AuditStatus
func (s AuditStatus) IsValid() bool {
	switch s {
	case AuditStatusInProgress, AuditStatusCompleted, AuditStatusApproved:
		return true
	}
	return false
}

// String returns the string representation of AuditStatus
func (s AuditStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s AuditStatus) CanTransitionTo(target AuditStatus) bool {
	switch s {
	case AuditStatusInProgress:
		return target == AuditStatusCompleted
	case AuditStatusCompleted:
		return target == AuditStatusApproved
	case AuditStatusApproved:
		return false // Terminal state
	}
	return false
}

// AuditScope determines which parts an audit covers
type AuditScope string

const (
	AuditScopeAll     AuditScope = "ALL"
	AuditScopePartial AuditScope = "PARTIAL"
)

// IsValid checks if the scope is a valid AuditScope
func (s AuditScope) IsValid() bool {
	return s == AuditScopeAll || s == AuditScopePartial
}

// AuditItem represents the count sheet line for one part. SystemQty is a
// snapshot taken when the audit was created; CountedQty stays nil until a
// count is entered.
type AuditItem struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	AuditID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	PartID      uuid.UUID        `gorm:"type:uuid;not null"`
	PartCode    string           `gorm:"type:varchar(50);not null"`
	PartName    string           `gorm:"type:varchar(200);not null"`
	SystemQty   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CountedQty  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Discrepancy *decimal.Decimal `gorm:"type:decimal(18,4)"` // CountedQty - SystemQty
	Notes       string           `gorm:"type:varchar(255)"`
	CountedAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditItem) TableName() string {
	return "audit_items"
}

// NewAuditItem snapshots a part's system quantity onto a count sheet line
func NewAuditItem(auditID, partID uuid.UUID, partCode, partName string, systemQty decimal.Decimal) *AuditItem {
	now := time.Now()
	return &AuditItem{
		ID:        uuid.New(),
		AuditID:   auditID,
		PartID:    partID,
		PartCode:  partCode,
		PartName:  partName,
		SystemQty: systemQty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsCounted returns true once a physical count has been entered
func (i *AuditItem) IsCounted() bool {
	return i.CountedQty != nil
}

// HasDiscrepancy returns true if the counted quantity differs from the snapshot
func (i *AuditItem) HasDiscrepancy() bool {
	return i.Discrepancy != nil && !i.Discrepancy.IsZero()
}

// recordCount enters the physical count and derives the discrepancy
func (i *AuditItem) recordCount(countedQty decimal.Decimal, notes string) error {
	if countedQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}

	discrepancy := countedQty.Sub(i.SystemQty)
	now := time.Now()
	i.CountedQty = &countedQty
	i.Discrepancy = &discrepancy
	i.Notes = notes
	i.CountedAt = &now
	i.UpdatedAt = now

	return nil
}

// AuditRecord represents a physical-count campaign. Completion and
// approval are status transitions only; stock corrections are posted
// separately as explicit adjustment transactions.
type AuditRecord struct {
	shared.BaseAggregateRoot
	Code             string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_audit_code"`
	Scope            AuditScope  `gorm:"type:varchar(20);not null"`
	AuditType        string      `gorm:"type:varchar(50)"`
	AuditDate        time.Time   `gorm:"not null"`
	Performer        string      `gorm:"type:varchar(100)"`
	Items            []AuditItem `gorm:"foreignKey:AuditID;references:ID"`
	TotalItems       int         `gorm:"not null;default:0"`
	MatchedItems     int         `gorm:"not null;default:0"`
	DiscrepancyItems int         `gorm:"not null;default:0"`
	Status           AuditStatus `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'"`
	CompletedAt      *time.Time
	ApprovedAt       *time.Time
	ApprovedBy       string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (AuditRecord) TableName() string {
	return "audit_records"
}

// NewAuditRecord creates a new audit campaign
func NewAuditRecord(code string, scope AuditScope, auditType string, auditDate time.Time, performer string) (*AuditRecord, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Audit code cannot be empty")
	}
	if !scope.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCOPE", "Audit scope must be ALL or PARTIAL")
	}
	if auditDate.IsZero() {
		auditDate = time.Now()
	}

	record := &AuditRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Scope:             scope,
		AuditType:         auditType,
		AuditDate:         auditDate,
		Performer:         performer,
		Items:             make([]AuditItem, 0),
		Status:            AuditStatusInProgress,
	}

	record.AddDomainEvent(NewAuditCreatedEvent(record))

	return record, nil
}

// AddItem snapshots one part onto the audit. Only allowed while counting
// has not finished.
func (a *AuditRecord) AddItem(partID uuid.UUID, partCode, partName string, systemQty decimal.Decimal) error {
	if a.Status != AuditStatusInProgress {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to a finished audit")
	}
	if partID == uuid.Nil {
		return shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}
	for _, item := range a.Items {
		if item.PartID == partID {
			return shared.NewDomainError("DUPLICATE_PART", "Part is already on this audit")
		}
	}

	item := NewAuditItem(a.ID, partID, partCode, partName, systemQty)
	a.Items = append(a.Items, *item)
	a.recalculateTotals()
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// RecordCount enters the physical count for one item and recomputes the
// campaign aggregates from the full item set.
func (a *AuditRecord) RecordCount(itemID uuid.UUID, countedQty decimal.Decimal, notes string) (*AuditItem, error) {
	if a.Status != AuditStatusInProgress {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record counts while audit is %s", a.Status))
	}

	for idx := range a.Items {
		if a.Items[idx].ID == itemID {
			if err := a.Items[idx].recordCount(countedQty, notes); err != nil {
				return nil, err
			}
			a.recalculateTotals()
			a.UpdatedAt = time.Now()
			a.IncrementVersion()
			return &a.Items[idx], nil
		}
	}

	return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Audit item not found")
}

// Complete ends the counting phase. No inventory is touched.
func (a *AuditRecord) Complete() error {
	if !a.Status.CanTransitionTo(AuditStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to COMPLETED", a.Status))
	}

	now := time.Now()
	a.Status = AuditStatusCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAuditCompletedEvent(a))

	return nil
}

// Approve signs off a completed audit. No inventory is touched; any
// correction is an explicit adjustment posted through the ledger.
func (a *AuditRecord) Approve(approvedBy string) error {
	if !a.Status.CanTransitionTo(AuditStatusApproved) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to APPROVED", a.Status))
	}

	now := time.Now()
	a.Status = AuditStatusApproved
	a.ApprovedAt = &now
	a.ApprovedBy = approvedBy
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// ItemByID returns the item with the given ID, or nil
func (a *AuditRecord) ItemByID(itemID uuid.UUID) *AuditItem {
	for idx := range a.Items {
		if a.Items[idx].ID == itemID {
			return &a.Items[idx]
		}
	}
	return nil
}

// CountedItems returns how many items have a recorded count
func (a *AuditRecord) CountedItems() int {
	count := 0
	for _, item := range a.Items {
		if item.IsCounted() {
			count++
		}
	}
	return count
}

// ItemsWithDiscrepancy returns all counted items whose count differs from
// the snapshot
func (a *AuditRecord) ItemsWithDiscrepancy() []AuditItem {
	items := make([]AuditItem, 0)
	for _, item := range a.Items {
		if item.HasDiscrepancy() {
			items = append(items, item)
		}
	}
	return items
}

// recalculateTotals recomputes aggregates by scanning the full item set.
// Audits are bounded by part count, so the scan stays cheap.
func (a *AuditRecord) recalculateTotals() {
	a.TotalItems = len(a.Items)
	matched := 0
	discrepancies := 0
	for _, item := range a.Items {
		if !item.IsCounted() {
			continue
		}
		if item.HasDiscrepancy() {
			discrepancies++
		} else {
			matched++
		}
	}
	a.MatchedItems = matched
	a.DiscrepancyItems = discrepancies
}

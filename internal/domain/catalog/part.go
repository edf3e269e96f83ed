package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// PartStatus represents the lifecycle status of a part
type PartStatus string

const (
	PartStatusActive   PartStatus = "active"
	PartStatusInactive PartStatus = "inactive"
)

// Part represents a material/part master record.
// It is the aggregate root for part-related operations.
type Part struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_part_code"`
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Specification string         `gorm:"type:varchar(200)"`
	Unit         string          `gorm:"type:varchar(20);not null"` // Base unit (e.g. "pcs", "kg", "box")
	Category     string          `gorm:"type:varchar(100);index"`
	SafetyStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Minimum stock level for alerts
	MinOrderQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       PartStatus      `gorm:"type:varchar(20);not null;default:'active'"`
	Notes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Part) TableName() string {
	return "parts"
}

// NewPart creates a new part
func NewPart(code, name, unit string) (*Part, error) {
	if err := validatePartCode(code); err != nil {
		return nil, err
	}
	if err := validatePartName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	part := &Part{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Unit:              unit,
		SafetyStock:       decimal.Zero,
		MinOrderQty:       decimal.Zero,
		UnitPrice:         decimal.Zero,
		Status:            PartStatusActive,
	}

	part.AddDomainEvent(NewPartCreatedEvent(part))

	return part, nil
}

// Update updates the part's basic information
func (p *Part) Update(name, specification, category string) error {
	if err := validatePartName(name); err != nil {
		return err
	}

	p.Name = name
	p.Specification = specification
	p.Category = category
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartUpdatedEvent(p))

	return nil
}

// SetUnit changes the base unit of the part
func (p *Part) SetUnit(unit string) error {
	if err := validateUnit(unit); err != nil {
		return err
	}

	p.Unit = unit
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetSafetyStock sets the safety stock threshold used for low-stock alerts
func (p *Part) SetSafetyStock(qty decimal.Decimal) error {
	if qty.IsNegative() {
		return shared.NewDomainError("INVALID_SAFETY_STOCK", "Safety stock cannot be negative")
	}

	p.SafetyStock = qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetMinOrderQty sets the minimum order quantity for replenishment
func (p *Part) SetMinOrderQty(qty decimal.Decimal) error {
	if qty.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER_QTY", "Minimum order quantity cannot be negative")
	}

	p.MinOrderQty = qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetUnitPrice sets the reference unit price
func (p *Part) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	p.UnitPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Activate re-activates a previously deactivated part
func (p *Part) Activate() error {
	if p.Status == PartStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Part is already active")
	}

	p.Status = PartStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartStatusChangedEvent(p, PartStatusInactive, PartStatusActive))

	return nil
}

// Deactivate soft-deletes the part. Historical transactions keep
// referencing it; new transactions against an inactive part are rejected
// at the application layer.
func (p *Part) Deactivate() error {
	if p.Status == PartStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Part is already inactive")
	}

	p.Status = PartStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartStatusChangedEvent(p, PartStatusActive, PartStatusInactive))

	return nil
}

// IsActive returns true if the part is active
func (p *Part) IsActive() bool {
	return p.Status == PartStatusActive
}

func validatePartCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Part code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Part code cannot exceed 50 characters")
	}
	return nil
}

func validatePartName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Part name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Part name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}

// PartIDsByCode builds a code-to-ID lookup map from a slice of parts
func PartIDsByCode(parts []Part) map[string]uuid.UUID {
	m := make(map[string]uuid.UUID, len(parts))
	for _, p := range parts {
		m[p.Code] = p.ID
	}
	return m
}

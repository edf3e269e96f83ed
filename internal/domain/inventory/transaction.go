package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeInbound represents stock coming into inventory (purchase receiving, return)
	TransactionTypeInbound TransactionType = "INBOUND"
	// TransactionTypeOutbound represents stock leaving inventory (picking, shipment)
	TransactionTypeOutbound TransactionType = "OUTBOUND"
	// TransactionTypeAdjustment represents a correction to an absolute quantity
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	// TransactionTypeTransferIn represents stock arriving from another location
	TransactionTypeTransferIn TransactionType = "TRANSFER_IN"
	// TransactionTypeTransferOut represents stock leaving for another location
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeInbound,
		TransactionTypeOutbound,
		TransactionTypeAdjustment,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type increases on-hand quantity
func (t TransactionType) IsIncrease() bool {
	return t == TransactionTypeInbound
}

// IsDecrease returns true if this transaction type decreases on-hand quantity
func (t TransactionType) IsDecrease() bool {
	return t == TransactionTypeOutbound || t == TransactionTypeTransferOut
}

// IsRecordOnly returns true for entries that document a movement without
// changing counted stock. TRANSFER_IN is the arrival half of a transfer
// pair; location bookkeeping lives outside this ledger.
func (t TransactionType) IsRecordOnly() bool {
	return t == TransactionTypeTransferIn
}

// CodePrefix returns the allocator prefix used for transaction codes of this type
func (t TransactionType) CodePrefix() string {
	switch t {
	case TransactionTypeInbound:
		return "IN"
	case TransactionTypeOutbound:
		return "OUT"
	case TransactionTypeAdjustment:
		return "ADJ"
	case TransactionTypeTransferIn, TransactionTypeTransferOut:
		return "TRF"
	}
	return "TXN"
}

// ReferenceType identifies the kind of source document a transaction points at
type ReferenceType string

const (
	// ReferenceTypePurchaseOrder links a transaction to a purchase order
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	// ReferenceTypeSalesOrder links a transaction to a sales order
	ReferenceTypeSalesOrder ReferenceType = "SALES_ORDER"
	// ReferenceTypePickingTask links a transaction to a picking task item
	ReferenceTypePickingTask ReferenceType = "PICKING_TASK"
	// ReferenceTypeAudit links a transaction to an audit correction
	ReferenceTypeAudit ReferenceType = "AUDIT"
	// ReferenceTypeImport links a transaction to a bulk upload
	ReferenceTypeImport ReferenceType = "IMPORT"
	// ReferenceTypeManual marks a transaction entered by hand
	ReferenceTypeManual ReferenceType = "MANUAL"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypePurchaseOrder,
		ReferenceTypeSalesOrder,
		ReferenceTypePickingTask,
		ReferenceTypeAudit,
		ReferenceTypeImport,
		ReferenceTypeManual:
		return true
	}
	return false
}

// Reference is the tagged source-document pointer carried by a transaction.
// Type is always set; ID is empty only for MANUAL entries.
type Reference struct {
	Type ReferenceType `gorm:"column:reference_type;type:varchar(30);not null;index" json:"type"`
	ID   string        `gorm:"column:reference_id;type:varchar(50);index" json:"id,omitempty"`
}

// Validate checks the reference for internal consistency
func (r Reference) Validate() error {
	if !r.Type.IsValid() {
		return shared.NewDomainError("INVALID_REFERENCE_TYPE", "Invalid reference type")
	}
	if r.Type != ReferenceTypeManual && r.ID == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference ID is required for non-manual transactions")
	}
	return nil
}

// ManualReference builds a reference for hand-entered transactions
func ManualReference() Reference {
	return Reference{Type: ReferenceTypeManual}
}

// Transaction represents an immutable ledger entry for a stock movement.
// Once created, transactions are never modified or deleted; corrections
// are posted as new ADJUSTMENT entries.
type Transaction struct {
	shared.BaseEntity
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_transaction_code"`
	PartID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_transaction_part"`
	Type            TransactionType `gorm:"type:varchar(30);not null;index:idx_transaction_type"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Positive; for ADJUSTMENT this is the new absolute quantity
	BeforeQty       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // On-hand quantity before the movement
	AfterQty        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // On-hand quantity after the movement
	Reference       Reference       `gorm:"embedded"`
	Reason          string          `gorm:"type:varchar(255)"`
	PerformedBy     string          `gorm:"type:varchar(100)"`
	TransactionDate time.Time       `gorm:"type:timestamptz;not null;index:idx_transaction_date"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "inventory_transactions"
}

// NewTransaction creates a new ledger entry
func NewTransaction(
	code string,
	partID uuid.UUID,
	txType TransactionType,
	quantity decimal.Decimal,
	beforeQty decimal.Decimal,
	afterQty decimal.Decimal,
	reference Reference,
) (*Transaction, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Transaction code cannot be empty")
	}
	if partID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if txType != TransactionTypeAdjustment && quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if err := reference.Validate(); err != nil {
		return nil, err
	}

	return &Transaction{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            code,
		PartID:          partID,
		Type:            txType,
		Quantity:        quantity,
		BeforeQty:       beforeQty,
		AfterQty:        afterQty,
		Reference:       reference,
		TransactionDate: time.Now(),
	}, nil
}

// WithReason sets the reason for the transaction
func (t *Transaction) WithReason(reason string) *Transaction {
	t.Reason = reason
	return t
}

// WithPerformedBy sets who performed the movement
func (t *Transaction) WithPerformedBy(performedBy string) *Transaction {
	t.PerformedBy = performedBy
	return t
}

// WithTransactionDate overrides the transaction date, used by imports
// replaying historical movements
func (t *Transaction) WithTransactionDate(date time.Time) *Transaction {
	if !date.IsZero() {
		t.TransactionDate = date
	}
	return t
}

// SignedQuantity returns the net on-hand change this entry produced
func (t *Transaction) SignedQuantity() decimal.Decimal {
	return t.AfterQty.Sub(t.BeforeQty)
}

// IsConsistent verifies that before, after, quantity and type agree
func (t *Transaction) IsConsistent() bool {
	switch {
	case t.Type.IsIncrease():
		return t.AfterQty.Equal(t.BeforeQty.Add(t.Quantity))
	case t.Type.IsDecrease():
		return t.AfterQty.Equal(t.BeforeQty.Sub(t.Quantity))
	case t.Type == TransactionTypeAdjustment:
		return t.AfterQty.Equal(t.Quantity)
	case t.Type.IsRecordOnly():
		return t.AfterQty.Equal(t.BeforeQty)
	}
	return false
}

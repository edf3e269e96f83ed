package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/shared"
)

// CodeSequence is the counter row backing code allocation for one prefix
type CodeSequence struct {
	Prefix    string    `gorm:"type:varchar(16);primaryKey"`
	NextValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CodeSequence) TableName() string {
	return "code_sequences"
}

// GormCodeAllocator implements CodeAllocator on a per-prefix counter table.
// Allocation is a single atomic upsert: the insert seeds a fresh prefix at 1,
// the conflict branch increments under the row lock Postgres takes for the
// update, so two concurrent calls for the same prefix serialize and never
// see the same value. A sequence value consumed by a transaction that later
// rolls back leaves a gap in the issued codes, which is accepted.
type GormCodeAllocator struct {
	db *gorm.DB
}

// NewGormCodeAllocator creates a new GormCodeAllocator
func NewGormCodeAllocator(db *gorm.DB) *GormCodeAllocator {
	return &GormCodeAllocator{db: db}
}

// Next returns the next code for the given prefix
func (a *GormCodeAllocator) Next(ctx context.Context, prefix string) (string, error) {
	if err := shared.ValidateCodePrefix(prefix); err != nil {
		return "", err
	}

	var next int64
	err := a.db.WithContext(ctx).Raw(`
		INSERT INTO code_sequences (prefix, next_value, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (prefix)
		DO UPDATE SET next_value = code_sequences.next_value + 1, updated_at = NOW()
		RETURNING next_value`, prefix).
		Scan(&next).Error
	if err != nil {
		return "", err
	}

	return shared.FormatCode(prefix, next), nil
}

// Reserve bumps the prefix's counter to at least seq. Used when a code
// with an explicit suffix enters through bulk import, so a later Next
// for the same prefix cannot collide with it.
func (a *GormCodeAllocator) Reserve(ctx context.Context, prefix string, seq int64) error {
	if err := shared.ValidateCodePrefix(prefix); err != nil {
		return err
	}
	if seq <= 0 {
		return shared.NewDomainError("INVALID_SEQUENCE", "Reserved sequence value must be positive")
	}

	return a.db.WithContext(ctx).Exec(`
		INSERT INTO code_sequences (prefix, next_value, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (prefix)
		DO UPDATE SET next_value = GREATEST(code_sequences.next_value, EXCLUDED.next_value), updated_at = NOW()`,
		prefix, seq).Error
}

// Ensure GormCodeAllocator implements CodeAllocator
var _ shared.CodeAllocator = (*GormCodeAllocator)(nil)

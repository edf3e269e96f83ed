package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mims/backend/internal/domain/shared"
)

// UploadType represents the kind of data a bulk upload carried
type UploadType string

const (
	UploadTypeTransactions UploadType = "transactions"
	UploadTypeOrders       UploadType = "orders"
	UploadTypeProducts     UploadType = "products"
)

// IsValid checks if the upload type is valid
func (u UploadType) IsValid() bool {
	switch u {
	case UploadTypeTransactions, UploadTypeOrders, UploadTypeProducts:
		return true
	}
	return false
}

// UploadStatus represents the outcome of a bulk upload
type UploadStatus string

const (
	// UploadStatusCompleted means every row succeeded
	UploadStatusCompleted UploadStatus = "COMPLETED"
	// UploadStatusPartial means some rows succeeded, some failed
	UploadStatusPartial UploadStatus = "PARTIAL"
	// UploadStatusFailed means no row succeeded
	UploadStatusFailed UploadStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s UploadStatus) IsValid() bool {
	return s == UploadStatusCompleted || s == UploadStatusPartial || s == UploadStatusFailed
}

// RowError describes a single failed row. Errors carry the 1-based row
// number so the uploader can fix the source file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// String formats the error the way it is surfaced to the uploader
func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// UploadLog records the aggregated outcome of one bulk upload batch.
// Exactly one log is written per batch, after every row has been tried.
type UploadLog struct {
	shared.BaseEntity
	Type         UploadType   `gorm:"type:varchar(30);not null;index"`
	FileName     string       `gorm:"type:varchar(255);not null"`
	TotalRows    int          `gorm:"not null"`
	SuccessRows  int          `gorm:"not null"`
	FailedRows   int          `gorm:"not null"`
	Status       UploadStatus `gorm:"type:varchar(20);not null"`
	Errors       string       `gorm:"type:jsonb"` // JSON array of RowError
	CreatedCodes string       `gorm:"type:jsonb"` // JSON array of codes allocated during the batch
	UploadedBy   string       `gorm:"type:varchar(100)"`
	UploadedAt   time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UploadLog) TableName() string {
	return "bulk_upload_logs"
}

// NewUploadLog builds the batch outcome record
func NewUploadLog(uploadType UploadType, fileName string, totalRows, successRows int, rowErrors []RowError, createdCodes []string) (*UploadLog, error) {
	if !uploadType.IsValid() {
		return nil, shared.NewDomainError("INVALID_UPLOAD_TYPE", fmt.Sprintf("Invalid upload type: %s", uploadType))
	}
	if totalRows < 0 || successRows < 0 || successRows > totalRows {
		return nil, shared.NewDomainError("INVALID_COUNTS", "Row counts are inconsistent")
	}

	failed := totalRows - successRows

	status := UploadStatusCompleted
	switch {
	case totalRows > 0 && successRows == 0:
		status = UploadStatusFailed
	case failed > 0:
		status = UploadStatusPartial
	}

	errorsJSON, err := json.Marshal(rowErrors)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ERRORS", "Cannot serialize row errors")
	}
	codesJSON, err := json.Marshal(createdCodes)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODES", "Cannot serialize created codes")
	}

	return &UploadLog{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         uploadType,
		FileName:     fileName,
		TotalRows:    totalRows,
		SuccessRows:  successRows,
		FailedRows:   failed,
		Status:       status,
		Errors:       string(errorsJSON),
		CreatedCodes: string(codesJSON),
		UploadedAt:   time.Now(),
	}, nil
}

// WithUploadedBy sets who ran the upload
func (l *UploadLog) WithUploadedBy(uploadedBy string) *UploadLog {
	l.UploadedBy = uploadedBy
	return l
}

// RowErrors decodes the stored error list
func (l *UploadLog) RowErrors() ([]RowError, error) {
	if l.Errors == "" {
		return nil, nil
	}
	var errs []RowError
	if err := json.Unmarshal([]byte(l.Errors), &errs); err != nil {
		return nil, err
	}
	return errs, nil
}

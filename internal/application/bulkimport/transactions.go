package bulkimport

import (
	"context"
	"strings"
	"time"

	appinventory "github.com/mims/backend/internal/application/inventory"
	"github.com/mims/backend/internal/domain/bulk"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// ImportTransactions posts one ledger movement per row. Each row inherits
// the ledger's stock-sufficiency and atomicity guarantees; a failing row
// never unwinds an earlier row's committed movement.
func (s *ImportService) ImportTransactions(ctx context.Context, req TransactionImportRequest) (*ImportResult, error) {
	if len(req.Data) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "Upload contains no rows")
	}

	partCodes := make([]string, 0, len(req.Data))
	for _, row := range req.Data {
		partCodes = append(partCodes, row.PartCode)
	}
	partsByCode, err := s.loadPartsByCode(ctx, partCodes)
	if err != nil {
		return nil, err
	}

	referenceID := req.FileName
	if referenceID == "" {
		referenceID = "upload-" + time.Now().Format("20060102-150405")
	}

	rowErrors := make([]bulk.RowError, 0)
	createdCodes := make([]string, 0)

	for idx, row := range req.Data {
		rowNum := idx + 1

		code := strings.ToUpper(strings.TrimSpace(row.PartCode))
		if code == "" {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "part code is required"})
			continue
		}
		part, ok := partsByCode[code]
		if !ok {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "unknown part code " + code})
			continue
		}
		if row.Quantity == nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "quantity is required"})
			continue
		}

		var txDate *time.Time
		if strings.TrimSpace(row.TransactionDate) != "" {
			parsed, err := parseRowDate(row.TransactionDate)
			if err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
				continue
			}
			txDate = &parsed
		}

		resp, err := s.ledger.Apply(ctx, appinventory.ApplyRequest{
			PartID:          part.ID,
			Type:            strings.ToUpper(strings.TrimSpace(row.Type)),
			Quantity:        *row.Quantity,
			ReferenceType:   string(inventory.ReferenceTypeImport),
			ReferenceID:     referenceID,
			Reason:          row.Reason,
			PerformedBy:     firstNonEmpty(row.PerformedBy, req.UploadedBy),
			TransactionDate: txDate,
		})
		if err != nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		createdCodes = append(createdCodes, resp.Code)
	}

	return s.finishBatch(ctx, bulk.UploadTypeTransactions, req.FileName, req.UploadedBy,
		len(req.Data), len(req.Data)-len(rowErrors), rowErrors, createdCodes)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

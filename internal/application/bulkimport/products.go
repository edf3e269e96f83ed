package bulkimport

import (
	"context"
	"strings"

	"github.com/mims/backend/internal/domain/bulk"
	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/shared"
)

// defaultUnit is used when a product row carries no unit
const defaultUnit = "pcs"

// ImportProducts upserts part master records from external rows. Part
// code is the natural key; rows without one get an allocated code.
func (s *ImportService) ImportProducts(ctx context.Context, req ProductImportRequest) (*ImportResult, error) {
	if len(req.Data) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "Upload contains no rows")
	}

	partCodes := make([]string, 0, len(req.Data))
	for _, row := range req.Data {
		partCodes = append(partCodes, row.Code)
	}
	partsByCode, err := s.loadPartsByCode(ctx, partCodes)
	if err != nil {
		return nil, err
	}

	rowErrors := make([]bulk.RowError, 0)
	createdCodes := make([]string, 0)

	for idx, row := range req.Data {
		rowNum := idx + 1

		if strings.TrimSpace(row.Name) == "" {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "part name is required"})
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(row.Code))
		if code == "" {
			code, err = s.allocator.Next(ctx, "PRT")
			if err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
				continue
			}
		}

		if existing, ok := partsByCode[code]; ok {
			if err := s.updatePart(ctx, existing, row); err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
			}
			continue
		}

		part, err := s.createPart(ctx, code, row)
		if err != nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		// Later rows in the same batch merge into the row-created part
		partsByCode[code] = part
		createdCodes = append(createdCodes, code)
	}

	return s.finishBatch(ctx, bulk.UploadTypeProducts, req.FileName, req.UploadedBy,
		len(req.Data), len(req.Data)-len(rowErrors), rowErrors, createdCodes)
}

func (s *ImportService) createPart(ctx context.Context, code string, row ProductRow) (*catalog.Part, error) {
	unit := strings.TrimSpace(row.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	part, err := catalog.NewPart(code, row.Name, unit)
	if err != nil {
		return nil, err
	}
	if err := part.Update(row.Name, row.Specification, row.Category); err != nil {
		return nil, err
	}
	if err := applyPartNumbers(part, row); err != nil {
		return nil, err
	}

	if err := s.partRepo.Save(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

func (s *ImportService) updatePart(ctx context.Context, part *catalog.Part, row ProductRow) error {
	if err := part.Update(row.Name, row.Specification, row.Category); err != nil {
		return err
	}
	if unit := strings.TrimSpace(row.Unit); unit != "" {
		if err := part.SetUnit(unit); err != nil {
			return err
		}
	}
	if err := applyPartNumbers(part, row); err != nil {
		return err
	}
	return s.partRepo.SaveWithLock(ctx, part)
}

func applyPartNumbers(part *catalog.Part, row ProductRow) error {
	if row.SafetyStock != nil {
		if err := part.SetSafetyStock(*row.SafetyStock); err != nil {
			return err
		}
	}
	if row.MinOrderQty != nil {
		if err := part.SetMinOrderQty(*row.MinOrderQty); err != nil {
			return err
		}
	}
	if row.UnitPrice != nil {
		if err := part.SetUnitPrice(*row.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

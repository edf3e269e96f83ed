package bulkimport

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/mims/backend/internal/application/inventory"
	"github.com/mims/backend/internal/domain/bulk"
	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/order"
	"github.com/mims/backend/internal/domain/partner"
	"github.com/mims/backend/internal/domain/shared"
)

// ImportService reconciles externally supplied rows (spreadsheet exports,
// legacy system dumps) into ledger and master data. Rows are processed
// independently: one bad row is reported, not fatal to the batch.
type ImportService struct {
	ledger       *appinventory.LedgerService
	allocator    shared.CodeAllocator
	partRepo     catalog.PartRepository
	supplierRepo partner.SupplierRepository
	orderRepo    order.PurchaseOrderRepository
	uploadRepo   bulk.UploadLogRepository
	logger       *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	ledger *appinventory.LedgerService,
	allocator shared.CodeAllocator,
	partRepo catalog.PartRepository,
	supplierRepo partner.SupplierRepository,
	orderRepo order.PurchaseOrderRepository,
	uploadRepo bulk.UploadLogRepository,
	logger *zap.Logger,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		ledger:       ledger,
		allocator:    allocator,
		partRepo:     partRepo,
		supplierRepo: supplierRepo,
		orderRepo:    orderRepo,
		uploadRepo:   uploadRepo,
		logger:       logger,
	}
}

// GetUpload returns one upload log
func (s *ImportService) GetUpload(ctx context.Context, uploadID uuid.UUID) (*UploadLogResponse, error) {
	log, err := s.uploadRepo.FindByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	return toUploadLogResponse(log)
}

// ListUploads returns paginated upload logs
func (s *ImportService) ListUploads(ctx context.Context, filter UploadListFilter) ([]UploadLogResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	var (
		logs []bulk.UploadLog
		err  error
	)
	if filter.Type != "" {
		uploadType := bulk.UploadType(filter.Type)
		if !uploadType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_UPLOAD_TYPE", "Invalid upload type")
		}
		logs, err = s.uploadRepo.FindByType(ctx, uploadType, f)
	} else {
		logs, err = s.uploadRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.uploadRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UploadLogResponse, 0, len(logs))
	for idx := range logs {
		resp, err := toUploadLogResponse(&logs[idx])
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, *resp)
	}
	return responses, total, nil
}

func toUploadLogResponse(log *bulk.UploadLog) (*UploadLogResponse, error) {
	rowErrors, err := log.RowErrors()
	if err != nil {
		return nil, err
	}
	messages := make([]string, 0, len(rowErrors))
	for _, rowErr := range rowErrors {
		messages = append(messages, rowErr.String())
	}
	return &UploadLogResponse{
		ID:          log.ID,
		Type:        string(log.Type),
		FileName:    log.FileName,
		TotalRows:   log.TotalRows,
		SuccessRows: log.SuccessRows,
		FailedRows:  log.FailedRows,
		Status:      string(log.Status),
		Errors:      messages,
		UploadedBy:  log.UploadedBy,
		UploadedAt:  log.UploadedAt.Format(time.RFC3339),
	}, nil
}

// finishBatch writes the single upload log for the batch and builds the
// caller-facing result
func (s *ImportService) finishBatch(
	ctx context.Context,
	uploadType bulk.UploadType,
	fileName, uploadedBy string,
	totalRows, successRows int,
	rowErrors []bulk.RowError,
	createdCodes []string,
) (*ImportResult, error) {
	log, err := bulk.NewUploadLog(uploadType, fileName, totalRows, successRows, rowErrors, createdCodes)
	if err != nil {
		return nil, err
	}
	log.WithUploadedBy(uploadedBy)

	if err := s.uploadRepo.Create(ctx, log); err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(rowErrors))
	for _, rowErr := range rowErrors {
		messages = append(messages, rowErr.String())
	}

	s.logger.Info("bulk import finished",
		zap.String("type", string(uploadType)),
		zap.String("file", fileName),
		zap.Int("total", totalRows),
		zap.Int("failed", len(rowErrors)))

	return &ImportResult{
		UploadID:     log.ID,
		Success:      successRows,
		Failed:       totalRows - successRows,
		Errors:       messages,
		CreatedCodes: createdCodes,
	}, nil
}

// loadPartsByCode builds the per-batch part lookup, keyed by uppercase code
func (s *ImportService) loadPartsByCode(ctx context.Context, codes []string) (map[string]*catalog.Part, error) {
	distinct := distinctUpper(codes)
	if len(distinct) == 0 {
		return map[string]*catalog.Part{}, nil
	}
	parts, err := s.partRepo.FindByCodes(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*catalog.Part, len(parts))
	for idx := range parts {
		byCode[parts[idx].Code] = &parts[idx]
	}
	return byCode, nil
}

// loadSuppliersByName builds the per-batch supplier lookup, keyed by
// lowercase name for case-insensitive resolution
func (s *ImportService) loadSuppliersByName(ctx context.Context, names []string) (map[string]*partner.Supplier, error) {
	distinct := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, name)
	}
	if len(distinct) == 0 {
		return map[string]*partner.Supplier{}, nil
	}

	suppliers, err := s.supplierRepo.FindByNames(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*partner.Supplier, len(suppliers))
	for idx := range suppliers {
		byName[strings.ToLower(suppliers[idx].Name)] = &suppliers[idx]
	}
	return byName, nil
}

func distinctUpper(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// rowDateFormats are the date layouts accepted in upload rows
var rowDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

func parseRowDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range rowDateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, shared.NewDomainError("INVALID_DATE", "Unrecognized date format: "+value)
}

package bulkimport

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/bulk"
	"github.com/mims/backend/internal/domain/order"
	"github.com/mims/backend/internal/domain/shared"
)

// ImportOrders upserts purchase orders from external rows. Rows carrying
// an existing order code merge a line into that order and recompute its
// total; rows without a code get one from the allocator and open a new
// order.
func (s *ImportService) ImportOrders(ctx context.Context, req OrderImportRequest) (*ImportResult, error) {
	if len(req.Data) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "Upload contains no rows")
	}

	partCodes := make([]string, 0, len(req.Data))
	supplierNames := make([]string, 0, len(req.Data))
	orderCodes := make([]string, 0, len(req.Data))
	for _, row := range req.Data {
		partCodes = append(partCodes, row.PartCode)
		supplierNames = append(supplierNames, row.SupplierName)
		if strings.TrimSpace(row.OrderCode) != "" {
			orderCodes = append(orderCodes, row.OrderCode)
		}
	}

	partsByCode, err := s.loadPartsByCode(ctx, partCodes)
	if err != nil {
		return nil, err
	}
	suppliersByName, err := s.loadSuppliersByName(ctx, supplierNames)
	if err != nil {
		return nil, err
	}
	ordersByCode, err := s.loadOrdersByCode(ctx, orderCodes)
	if err != nil {
		return nil, err
	}

	rowErrors := make([]bulk.RowError, 0)
	createdCodes := make([]string, 0)
	// Orders created during this batch; saved once at the end alongside
	// merged existing orders.
	touched := make(map[string]*order.PurchaseOrder)
	isNew := make(map[string]bool)
	rowsByOrder := make(map[string][]int)

	for idx, row := range req.Data {
		rowNum := idx + 1

		partCode := strings.ToUpper(strings.TrimSpace(row.PartCode))
		part, ok := partsByCode[partCode]
		if partCode == "" || !ok {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "unknown part code " + row.PartCode})
			continue
		}
		if !part.IsActive() {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "part " + partCode + " is inactive"})
			continue
		}
		supplier, ok := suppliersByName[strings.ToLower(strings.TrimSpace(row.SupplierName))]
		if !ok {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "unknown supplier " + row.SupplierName})
			continue
		}
		if row.Quantity == nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "quantity is required"})
			continue
		}
		unitCost := decimal.Zero
		if row.UnitCost != nil {
			unitCost = *row.UnitCost
		}

		orderDate := time.Now()
		if strings.TrimSpace(row.OrderDate) != "" {
			parsed, err := parseRowDate(row.OrderDate)
			if err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
				continue
			}
			orderDate = parsed
		}

		code := strings.ToUpper(strings.TrimSpace(row.OrderCode))
		var target *order.PurchaseOrder
		switch {
		case code != "" && touched[code] != nil:
			target = touched[code]
		case code != "" && ordersByCode[code] != nil:
			target = ordersByCode[code]
		case code != "":
			created, err := order.NewPurchaseOrder(code, supplier.ID, supplier.Name, orderDate)
			if err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
				continue
			}
			// An explicit code shaped like an allocator code claims a slot
			// in that prefix's sequence; reserve it so a later codeless row
			// cannot be issued the same code.
			if prefix, seq, ok := shared.ParseCode(code); ok {
				if err := s.allocator.Reserve(ctx, prefix, seq); err != nil {
					rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
					continue
				}
			}
			target = created
			isNew[code] = true
			createdCodes = append(createdCodes, code)
		default:
			code, err = s.allocator.Next(ctx, "PO"+orderDate.Format("0601"))
			if err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
				continue
			}
			created, err := order.NewPurchaseOrder(code, supplier.ID, supplier.Name, orderDate)
			if err != nil {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
				continue
			}
			target = created
			isNew[code] = true
			createdCodes = append(createdCodes, code)
		}

		if err := target.MergeItem(part.ID, part.Code, part.Name, part.Unit, *row.Quantity, unitCost); err != nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		touched[code] = target
		rowsByOrder[code] = append(rowsByOrder[code], rowNum)
	}

	successRows := 0
	for _, rows := range rowsByOrder {
		successRows += len(rows)
	}

	for code, target := range touched {
		var saveErr error
		if isNew[code] {
			saveErr = s.orderRepo.Save(ctx, target)
		} else {
			saveErr = s.orderRepo.SaveWithLock(ctx, target)
		}
		if saveErr != nil {
			// A failed save takes every row merged into that order with it
			for _, rowNum := range rowsByOrder[code] {
				rowErrors = append(rowErrors, bulk.RowError{Row: rowNum, Message: "failed to save order " + code + ": " + saveErr.Error()})
			}
			successRows -= len(rowsByOrder[code])
		}
	}

	return s.finishBatch(ctx, bulk.UploadTypeOrders, req.FileName, req.UploadedBy,
		len(req.Data), successRows, rowErrors, createdCodes)
}

func (s *ImportService) loadOrdersByCode(ctx context.Context, codes []string) (map[string]*order.PurchaseOrder, error) {
	distinct := distinctUpper(codes)
	if len(distinct) == 0 {
		return map[string]*order.PurchaseOrder{}, nil
	}
	orders, err := s.orderRepo.FindByCodes(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*order.PurchaseOrder, len(orders))
	for idx := range orders {
		byCode[orders[idx].Code] = &orders[idx]
	}
	return byCode, nil
}

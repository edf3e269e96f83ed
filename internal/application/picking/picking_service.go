package picking

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/mims/backend/internal/application/inventory"
	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/picking"
	"github.com/mims/backend/internal/domain/shared"
)

// PickingService drives picking tasks from creation through completion.
// Completion is where the outbound ledger entries are produced; every
// other action is pure task state.
type PickingService struct {
	scope          appinventory.TransactionScope
	allocator      shared.CodeAllocator
	taskRepo       picking.PickingTaskRepository
	partRepo       catalog.PartRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPickingService creates a new PickingService
func NewPickingService(
	scope appinventory.TransactionScope,
	allocator shared.CodeAllocator,
	taskRepo picking.PickingTaskRepository,
	partRepo catalog.PartRepository,
	logger *zap.Logger,
) *PickingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PickingService{
		scope:     scope,
		allocator: allocator,
		taskRepo:  taskRepo,
		partRepo:  partRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PickingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateTask allocates a task code and creates the task with its lines
func (s *PickingService) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "A picking task needs at least one item")
	}

	partIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		partIDs = append(partIDs, item.PartID)
	}
	parts, err := s.partRepo.FindByIDs(ctx, partIDs)
	if err != nil {
		return nil, err
	}
	partsByID := make(map[uuid.UUID]*catalog.Part, len(parts))
	for idx := range parts {
		partsByID[parts[idx].ID] = &parts[idx]
	}

	code, err := s.allocator.Next(ctx, "PICK")
	if err != nil {
		return nil, err
	}

	task, err := picking.NewPickingTask(code, req.SalesOrderID, req.Reference)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = req.AssignedTo

	for _, item := range req.Items {
		part, ok := partsByID[item.PartID]
		if !ok {
			return nil, shared.NewDomainError("PART_NOT_FOUND", "Referenced part does not exist")
		}
		if !part.IsActive() {
			return nil, shared.NewDomainError("PART_INACTIVE", "Cannot pick an inactive part")
		}
		if _, err := task.AddItem(part.ID, part.Code, part.Name, item.RequiredQty); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, task)
	s.logger.Info("picking task created",
		zap.String("code", task.Code),
		zap.Int("items", task.TotalItems))

	return ToTaskResponse(task, true), nil
}

// GetTask returns one task with its items
func (s *PickingService) GetTask(ctx context.Context, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return ToTaskResponse(task, true), nil
}

// ListTasks returns paginated tasks
func (s *PickingService) ListTasks(ctx context.Context, filter TaskListFilter) ([]TaskResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search

	var (
		tasks []picking.PickingTask
		err   error
	)
	if filter.Status != "" {
		status := picking.PickingTaskStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid task status")
		}
		// Count must see the same predicate as FindByStatus, or the
		// pagination total disagrees with the page contents.
		f.Filters["status"] = status.String()
		tasks, err = s.taskRepo.FindByStatus(ctx, status, f)
	} else {
		tasks, err = s.taskRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.taskRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for idx := range tasks {
		responses = append(responses, *ToTaskResponse(&tasks[idx], false))
	}
	return responses, total, nil
}

// ApplyItemAction applies a picker action to one item and saves the task
// under its version check, so concurrent actions on the same task cannot
// lose each other's recount.
func (s *PickingService) ApplyItemAction(ctx context.Context, itemID uuid.UUID, req ItemActionRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "scan":
		err = task.Scan(itemID)
	case "pick":
		if req.PickedQty == nil {
			item := task.ItemByID(itemID)
			if item == nil {
				return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Picking item not found")
			}
			qty := item.RequiredQty
			err = task.Pick(itemID, qty)
		} else {
			err = task.Pick(itemID, *req.PickedQty)
		}
	case "skip":
		err = task.Skip(itemID, req.Reason)
	case "flag":
		err = task.Flag(itemID, req.Reason)
	default:
		return nil, shared.NewDomainError("INVALID_ACTION", "Action must be one of pick, scan, skip, flag")
	}
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return nil, err
	}

	return ToTaskResponse(task, true), nil
}

// Complete finishes a task. Inside one storage transaction it re-reads
// the task, rejects repeat completions, posts one OUTBOUND ledger entry
// per picked item that has not yet produced one, marks those items, and
// stamps the task completed. A retry after a partial failure picks up
// exactly the items whose entries are still missing.
func (s *PickingService) Complete(ctx context.Context, taskID uuid.UUID) (*CompletionResult, error) {
	var result *CompletionResult

	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		task, err := repos.PickingRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.IsCompleted() {
			return shared.ErrAlreadyCompleted
		}

		ledgerCodes := make([]string, 0)
		for _, item := range task.PendingLedgerItems() {
			code, err := s.allocator.Next(ctx, inventory.TransactionTypeOutbound.CodePrefix())
			if err != nil {
				return err
			}

			state, err := repos.StateRepo().GetOrCreate(ctx, item.PartID)
			if err != nil {
				return err
			}
			before, err := state.ApplyOutbound(item.PickedQty)
			if err != nil {
				return err
			}

			tx, err := inventory.NewTransaction(code, item.PartID,
				inventory.TransactionTypeOutbound, item.PickedQty, before, state.CurrentQty,
				inventory.Reference{Type: inventory.ReferenceTypePickingTask, ID: task.Code})
			if err != nil {
				return err
			}
			tx.WithPerformedBy(task.AssignedTo)

			if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
				return err
			}
			if err := repos.StateRepo().SaveWithLock(ctx, state); err != nil {
				return err
			}
			if err := task.MarkLedgerApplied(item.ID); err != nil {
				return err
			}
			ledgerCodes = append(ledgerCodes, code)
		}

		if err := task.Complete(); err != nil {
			return err
		}
		if err := repos.PickingRepo().SaveWithLock(ctx, task); err != nil {
			return err
		}

		result = &CompletionResult{
			TaskID:       task.ID,
			Code:         task.Code,
			PickedItems:  task.CountByStatus(picking.PickingItemStatusPicked),
			SkippedItems: task.CountByStatus(picking.PickingItemStatusSkipped),
			LedgerCodes:  ledgerCodes,
			CompletedAt:  *task.CompletedAt,
		}

		s.publishEvents(ctx, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("picking task completed",
		zap.String("code", result.Code),
		zap.Int("picked", result.PickedItems),
		zap.Int("skipped", result.SkippedItems))

	return result, nil
}

func (s *PickingService) publishEvents(ctx context.Context, task *picking.PickingTask) {
	if s.eventPublisher == nil {
		task.ClearDomainEvents()
		return
	}
	for _, event := range task.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	task.ClearDomainEvents()
}

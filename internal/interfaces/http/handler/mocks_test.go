package handler

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/picking"
	"github.com/mims/backend/internal/domain/shared"
)

// In-memory fakes backing real application services under httptest.

type fakeAllocator struct {
	mu   sync.Mutex
	next map[string]int64
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{next: make(map[string]int64)}
}

func (a *fakeAllocator) Next(_ context.Context, prefix string) (string, error) {
	if err := shared.ValidateCodePrefix(prefix); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next[prefix]++
	return shared.FormatCode(prefix, a.next[prefix]), nil
}

func (a *fakeAllocator) Reserve(_ context.Context, prefix string, seq int64) error {
	if err := shared.ValidateCodePrefix(prefix); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq > a.next[prefix] {
		a.next[prefix] = seq
	}
	return nil
}

type fakePartRepo struct {
	mu    sync.Mutex
	parts map[uuid.UUID]*catalog.Part
}

func newFakePartRepo(parts ...*catalog.Part) *fakePartRepo {
	r := &fakePartRepo{parts: make(map[uuid.UUID]*catalog.Part)}
	for _, p := range parts {
		r.parts[p.ID] = p
	}
	return r
}

func (r *fakePartRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.parts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartRepo) FindByCode(_ context.Context, code string) (*catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parts {
		if p.Code == strings.ToUpper(strings.TrimSpace(code)) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartRepo) FindByName(_ context.Context, name string) (*catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parts {
		if strings.EqualFold(p.Name, name) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Part, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.parts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePartRepo) FindByCodes(ctx context.Context, codes []string) ([]catalog.Part, error) {
	out := make([]catalog.Part, 0, len(codes))
	for _, code := range codes {
		if p, err := r.FindByCode(ctx, code); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePartRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Part, 0, len(r.parts))
	for _, p := range r.parts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePartRepo) FindActive(_ context.Context, _ shared.Filter) ([]catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Part, 0)
	for _, p := range r.parts {
		if p.IsActive() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePartRepo) Save(_ context.Context, part *catalog.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *part
	r.parts[part.ID] = &clone
	return nil
}

func (r *fakePartRepo) SaveWithLock(ctx context.Context, part *catalog.Part) error {
	return r.Save(ctx, part)
}

func (r *fakePartRepo) SaveBatch(ctx context.Context, parts []*catalog.Part) error {
	for _, p := range parts {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePartRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.parts)), nil
}

func (r *fakePartRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*picking.PickingTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*picking.PickingTask)}
}

func cloneTask(t *picking.PickingTask) *picking.PickingTask {
	clone := *t
	clone.Items = make([]picking.PickingItem, len(t.Items))
	copy(clone.Items, t.Items)
	return &clone
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*picking.PickingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		return cloneTask(t), nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTaskRepo) FindByCode(_ context.Context, code string) (*picking.PickingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.Code == code {
			return cloneTask(t), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTaskRepo) FindByItemID(_ context.Context, itemID uuid.UUID) (*picking.PickingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		for idx := range t.Items {
			if t.Items[idx].ID == itemID {
				return cloneTask(t), nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTaskRepo) FindAll(_ context.Context, _ shared.Filter) ([]picking.PickingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]picking.PickingTask, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *cloneTask(t))
	}
	return out, nil
}

func (r *fakeTaskRepo) FindByStatus(_ context.Context, status picking.PickingTaskStatus, _ shared.Filter) ([]picking.PickingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]picking.PickingTask, 0)
	for _, t := range r.tasks {
		if t.Status == status {
			out = append(out, *cloneTask(t))
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Save(_ context.Context, task *picking.PickingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *fakeTaskRepo) SaveWithLock(_ context.Context, task *picking.PickingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.tasks[task.ID]; ok && stored.Version > task.Version {
		return shared.ErrConcurrencyConflict
	}
	task.Version++
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *fakeTaskRepo) Count(_ context.Context, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, filtered := filter.Filters["status"].(string)
	var count int64
	for _, task := range r.tasks {
		if !filtered || task.Status.String() == status {
			count++
		}
	}
	return count, nil
}

type fakeStateRepo struct {
	mu     sync.Mutex
	states map[uuid.UUID]*inventory.InventoryState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[uuid.UUID]*inventory.InventoryState)}
}

func (r *fakeStateRepo) seed(partID uuid.UUID, qty decimal.Decimal) {
	state, _ := inventory.NewInventoryState(partID)
	state.CurrentQty = qty
	r.states[partID] = state
}

func (r *fakeStateRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s.ID == id {
			clone := *s
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStateRepo) FindByPartID(_ context.Context, partID uuid.UUID) (*inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[partID]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStateRepo) FindByPartIDs(_ context.Context, partIDs []uuid.UUID) ([]inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.InventoryState, 0)
	for _, id := range partIDs {
		if s, ok := r.states[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStateRepo) GetOrCreate(_ context.Context, partID uuid.UUID) (*inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[partID]; ok {
		clone := *s
		return &clone, nil
	}
	state, err := inventory.NewInventoryState(partID)
	if err != nil {
		return nil, err
	}
	stored := *state
	r.states[partID] = &stored
	clone := stored
	return &clone, nil
}

func (r *fakeStateRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.InventoryState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeStateRepo) Save(_ context.Context, state *inventory.InventoryState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *state
	r.states[state.PartID] = &clone
	return nil
}

func (r *fakeStateRepo) SaveWithLock(_ context.Context, state *inventory.InventoryState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.states[state.PartID]; ok && stored.Version > state.Version {
		return shared.ErrConcurrencyConflict
	}
	state.Version++
	clone := *state
	r.states[state.PartID] = &clone
	return nil
}

func (r *fakeStateRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.states)), nil
}

type fakeTxRepo struct {
	mu      sync.Mutex
	entries []inventory.Transaction
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{}
}

func (r *fakeTxRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx := range r.entries {
		if r.entries[idx].ID == id {
			clone := r.entries[idx]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTxRepo) FindByCode(_ context.Context, code string) (*inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx := range r.entries {
		if r.entries[idx].Code == code {
			clone := r.entries[idx]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTxRepo) FindByPartID(_ context.Context, partID uuid.UUID, _ shared.Filter) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, 0)
	for idx := range r.entries {
		if r.entries[idx].PartID == partID {
			out = append(out, r.entries[idx])
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindByReference(_ context.Context, refType inventory.ReferenceType, refID string) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, 0)
	for idx := range r.entries {
		if r.entries[idx].Reference.Type == refType && r.entries[idx].Reference.ID == refID {
			out = append(out, r.entries[idx])
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindAll(_ context.Context, _ inventory.TransactionFilter) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *fakeTxRepo) Create(_ context.Context, tx *inventory.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx := range r.entries {
		if r.entries[idx].Code == tx.Code {
			return shared.ErrAlreadyExists
		}
	}
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *fakeTxRepo) CreateBatch(ctx context.Context, txs []*inventory.Transaction) error {
	for _, tx := range txs {
		if err := r.Create(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTxRepo) Count(_ context.Context, _ inventory.TransactionFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *fakeTxRepo) CountByPartID(_ context.Context, partID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for idx := range r.entries {
		if r.entries[idx].PartID == partID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTxRepo) SumSignedQuantityByPartID(_ context.Context, partID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for idx := range r.entries {
		if r.entries[idx].PartID == partID {
			sum = sum.Add(r.entries[idx].SignedQuantity())
		}
	}
	return sum, nil
}

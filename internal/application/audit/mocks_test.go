package audit

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/audit"
	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// fakeAllocator hands out sequential codes per prefix without storage
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

// fakeAuditRepo stores audits in memory with optimistic version checks
type fakeAuditRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*audit.AuditRecord
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{records: make(map[uuid.UUID]*audit.AuditRecord)}
}

func cloneRecord(r *audit.AuditRecord) *audit.AuditRecord {
	clone := *r
	clone.Items = make([]audit.AuditItem, len(r.Items))
	copy(clone.Items, r.Items)
	return &clone
}

func (r *fakeAuditRepo) FindByID(_ context.Context, id uuid.UUID) (*audit.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		return cloneRecord(rec), nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAuditRepo) FindByCode(_ context.Context, code string) (*audit.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Code == code {
			return cloneRecord(rec), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAuditRepo) FindByItemID(_ context.Context, itemID uuid.UUID) (*audit.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		for idx := range rec.Items {
			if rec.Items[idx].ID == itemID {
				return cloneRecord(rec), nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAuditRepo) FindAll(_ context.Context, _ shared.Filter) ([]audit.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.AuditRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *cloneRecord(rec))
	}
	return out, nil
}

func (r *fakeAuditRepo) FindByStatus(_ context.Context, status audit.AuditStatus, _ shared.Filter) ([]audit.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.AuditRecord, 0)
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, *cloneRecord(rec))
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) Save(_ context.Context, record *audit.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = cloneRecord(record)
	return nil
}

func (r *fakeAuditRepo) SaveWithLock(_ context.Context, record *audit.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.records[record.ID]; ok && stored.Version > record.Version {
		return shared.ErrConcurrencyConflict
	}
	record.Version++
	r.records[record.ID] = cloneRecord(record)
	return nil
}

func (r *fakeAuditRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

// fakePartRepo is a map-backed catalog with paging on FindActive
type fakePartRepo struct {
	mu    sync.Mutex
	parts []*catalog.Part
}

func newFakePartRepo(parts ...*catalog.Part) *fakePartRepo {
	return &fakePartRepo{parts: parts}
}

func (r *fakePartRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartRepo) FindByCode(_ context.Context, code string) (*catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parts {
		if p.Code == strings.ToUpper(code) {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartRepo) FindByName(_ context.Context, name string) (*catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parts {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Part, 0, len(ids))
	for _, id := range ids {
		for _, p := range r.parts {
			if p.ID == id {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (r *fakePartRepo) FindByCodes(_ context.Context, codes []string) ([]catalog.Part, error) {
	out := make([]catalog.Part, 0, len(codes))
	for _, code := range codes {
		if p, err := r.FindByCode(context.Background(), code); err == nil {
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

func (r *fakePartRepo) FindActive(_ context.Context, filter shared.Filter) ([]catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := make([]catalog.Part, 0)
	for _, p := range r.parts {
		if p.IsActive() {
			active = append(active, *p)
		}
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(active) {
		return []catalog.Part{}, nil
	}
	end := start + filter.PageSize
	if end > len(active) {
		end = len(active)
	}
	return active[start:end], nil
}

func (r *fakePartRepo) Save(_ context.Context, part *catalog.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts = append(r.parts, part)
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

// fakeStateRepo is a minimal in-memory inventory state store
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

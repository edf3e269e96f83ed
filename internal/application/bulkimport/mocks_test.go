package bulkimport

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/bulk"
	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/order"
	"github.com/mims/backend/internal/domain/partner"
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

// fakePartRepo is a map-backed catalog keyed by part ID
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
		return p, nil
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
		if p, ok := r.parts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePartRepo) FindByCodes(_ context.Context, codes []string) ([]catalog.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Part, 0, len(codes))
	for _, code := range codes {
		for _, p := range r.parts {
			if p.Code == strings.ToUpper(code) {
				out = append(out, *p)
			}
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
	r.parts[part.ID] = part
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

// fakeSupplierRepo is a map-backed supplier store
type fakeSupplierRepo struct {
	mu        sync.Mutex
	suppliers []*partner.Supplier
}

func newFakeSupplierRepo(suppliers ...*partner.Supplier) *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: suppliers}
}

func (r *fakeSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSupplierRepo) FindByCode(_ context.Context, code string) (*partner.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suppliers {
		if s.Code == strings.ToUpper(code) {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSupplierRepo) FindByName(_ context.Context, name string) (*partner.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suppliers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSupplierRepo) FindByNames(_ context.Context, names []string) ([]partner.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]partner.Supplier, 0)
	for _, name := range names {
		for _, s := range r.suppliers {
			if strings.EqualFold(s.Name, name) {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

func (r *fakeSupplierRepo) FindAll(_ context.Context, _ shared.Filter) ([]partner.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]partner.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSupplierRepo) Save(_ context.Context, supplier *partner.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppliers = append(r.suppliers, supplier)
	return nil
}

func (r *fakeSupplierRepo) SaveBatch(ctx context.Context, suppliers []*partner.Supplier) error {
	for _, s := range suppliers {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSupplierRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.suppliers)), nil
}

// fakeOrderRepo is a map-backed purchase order store
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.PurchaseOrder

	// FailSaves makes every save fail, for batch error accounting tests
	FailSaves bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.PurchaseOrder)}
}

func cloneOrder(o *order.PurchaseOrder) *order.PurchaseOrder {
	clone := *o
	clone.Items = make([]order.PurchaseOrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByCode(_ context.Context, code string) (*order.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Code == code {
			return cloneOrder(o), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByCodes(_ context.Context, codes []string) ([]order.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.PurchaseOrder, 0)
	for _, code := range codes {
		for _, o := range r.orders {
			if o.Code == code {
				out = append(out, *cloneOrder(o))
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]order.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.PurchaseOrder, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *cloneOrder(o))
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByStatus(_ context.Context, status order.PurchaseOrderStatus, _ shared.Filter) ([]order.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.PurchaseOrder, 0)
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSaves {
		return shared.NewDomainError("STORAGE_ERROR", "save failed")
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(ctx context.Context, o *order.PurchaseOrder) error {
	return r.Save(ctx, o)
}

func (r *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

// fakeUploadRepo is an append-only upload log store
type fakeUploadRepo struct {
	mu   sync.Mutex
	logs []bulk.UploadLog
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{}
}

func (r *fakeUploadRepo) FindByID(_ context.Context, id uuid.UUID) (*bulk.UploadLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx := range r.logs {
		if r.logs[idx].ID == id {
			clone := r.logs[idx]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUploadRepo) FindAll(_ context.Context, _ shared.Filter) ([]bulk.UploadLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bulk.UploadLog, len(r.logs))
	copy(out, r.logs)
	return out, nil
}

func (r *fakeUploadRepo) FindByType(_ context.Context, uploadType bulk.UploadType, _ shared.Filter) ([]bulk.UploadLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bulk.UploadLog, 0)
	for idx := range r.logs {
		if r.logs[idx].Type == uploadType {
			out = append(out, r.logs[idx])
		}
	}
	return out, nil
}

func (r *fakeUploadRepo) Create(_ context.Context, log *bulk.UploadLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeUploadRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.logs)), nil
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

// fakeTxRepo is an append-only in-memory ledger
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

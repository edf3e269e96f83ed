package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// MockEventPublisher captures published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []shared.DomainEvent
	for _, e := range m.events {
		if e.EventType() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// FakeAllocator hands out sequential codes per prefix without storage
type FakeAllocator struct {
	mu   sync.Mutex
	next map[string]int64
}

func NewFakeAllocator() *FakeAllocator {
	return &FakeAllocator{next: make(map[string]int64)}
}

func (a *FakeAllocator) Next(_ context.Context, prefix string) (string, error) {
	if err := shared.ValidateCodePrefix(prefix); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next[prefix]++
	return shared.FormatCode(prefix, a.next[prefix]), nil
}

func (a *FakeAllocator) Reserve(_ context.Context, prefix string, seq int64) error {
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

// MockPartRepository mocks catalog.PartRepository
type MockPartRepository struct {
	mock.Mock
}

func (m *MockPartRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Part, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindByCode(ctx context.Context, code string) (*catalog.Part, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindByName(ctx context.Context, name string) (*catalog.Part, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Part, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindByCodes(ctx context.Context, codes []string) ([]catalog.Part, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).([]catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Part, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Part, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Part), args.Error(1)
}

func (m *MockPartRepository) Save(ctx context.Context, part *catalog.Part) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockPartRepository) SaveWithLock(ctx context.Context, part *catalog.Part) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockPartRepository) SaveBatch(ctx context.Context, parts []*catalog.Part) error {
	args := m.Called(ctx, parts)
	return args.Error(0)
}

func (m *MockPartRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// FakeStateRepository is an in-memory state store with real optimistic
// version semantics, so conflict/retry paths behave like the database.
type FakeStateRepository struct {
	mu     sync.Mutex
	states map[uuid.UUID]*inventory.InventoryState // keyed by part ID

	// FailNextSaves makes the next N SaveWithLock calls return a
	// concurrency conflict, simulating racing writers.
	FailNextSaves int
}

func NewFakeStateRepository() *FakeStateRepository {
	return &FakeStateRepository{states: make(map[uuid.UUID]*inventory.InventoryState)}
}

func (r *FakeStateRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryState, error) {
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

func (r *FakeStateRepository) FindByPartID(_ context.Context, partID uuid.UUID) (*inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[partID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *FakeStateRepository) FindByPartIDs(_ context.Context, partIDs []uuid.UUID) ([]inventory.InventoryState, error) {
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

func (r *FakeStateRepository) GetOrCreate(_ context.Context, partID uuid.UUID) (*inventory.InventoryState, error) {
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

func (r *FakeStateRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.InventoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.InventoryState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, *s)
	}
	return out, nil
}

func (r *FakeStateRepository) Save(_ context.Context, state *inventory.InventoryState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *state
	r.states[state.PartID] = &clone
	return nil
}

func (r *FakeStateRepository) SaveWithLock(_ context.Context, state *inventory.InventoryState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNextSaves > 0 {
		r.FailNextSaves--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := r.states[state.PartID]
	if ok && stored.Version >= state.Version {
		return shared.ErrConcurrencyConflict
	}
	clone := *state
	r.states[state.PartID] = &clone
	return nil
}

func (r *FakeStateRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.states)), nil
}

// FakeTransactionRepository is an in-memory append-only ledger
type FakeTransactionRepository struct {
	mu      sync.Mutex
	entries []inventory.Transaction
}

func NewFakeTransactionRepository() *FakeTransactionRepository {
	return &FakeTransactionRepository{}
}

func (r *FakeTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.Transaction, error) {
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

func (r *FakeTransactionRepository) FindByCode(_ context.Context, code string) (*inventory.Transaction, error) {
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

func (r *FakeTransactionRepository) FindByPartID(_ context.Context, partID uuid.UUID, _ shared.Filter) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, 0)
	for _, e := range r.entries {
		if e.PartID == partID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *FakeTransactionRepository) FindByReference(_ context.Context, refType inventory.ReferenceType, refID string) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, 0)
	for _, e := range r.entries {
		if e.Reference.Type == refType && e.Reference.ID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *FakeTransactionRepository) FindAll(_ context.Context, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, 0)
	for _, e := range r.entries {
		if filter.PartID != nil && e.PartID != *filter.PartID {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *FakeTransactionRepository) Create(_ context.Context, tx *inventory.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Code == tx.Code {
			return fmt.Errorf("duplicate code %s: %w", tx.Code, shared.ErrAlreadyExists)
		}
	}
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *FakeTransactionRepository) CreateBatch(ctx context.Context, txs []*inventory.Transaction) error {
	for _, tx := range txs {
		if err := r.Create(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeTransactionRepository) Count(_ context.Context, _ inventory.TransactionFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *FakeTransactionRepository) CountByPartID(_ context.Context, partID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.PartID == partID {
			n++
		}
	}
	return n, nil
}

func (r *FakeTransactionRepository) SumSignedQuantityByPartID(_ context.Context, partID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.PartID == partID {
			sum = sum.Add(e.SignedQuantity())
		}
	}
	return sum, nil
}

func (r *FakeTransactionRepository) Entries() []inventory.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Transaction, len(r.entries))
	copy(out, r.entries)
	return out
}

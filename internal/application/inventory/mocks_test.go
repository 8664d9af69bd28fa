package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
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
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockBatchRepository is a mock implementation of inventory.BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Batch, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByProductAndNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	args := m.Called(ctx, productID, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.Batch, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) GetOrCreate(ctx context.Context, batch *inventory.Batch) (*inventory.Batch, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockBatchRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

// MockLineRepository is a mock implementation of inventory.InventoryLineRepository
type MockLineRepository struct {
	mock.Mock
}

func (m *MockLineRepository) FindByKey(ctx context.Context, branchID, productID, batchID uuid.UUID, ledger inventory.Ledger) (*inventory.InventoryLine, error) {
	args := m.Called(ctx, branchID, productID, batchID, ledger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryLine), args.Error(1)
}

func (m *MockLineRepository) FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID, ledger inventory.Ledger) ([]inventory.InventoryLine, error) {
	args := m.Called(ctx, branchID, productID, ledger)
	return args.Get(0).([]inventory.InventoryLine), args.Error(1)
}

func (m *MockLineRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, ledger inventory.Ledger, filter shared.Filter) ([]inventory.InventoryLine, int64, error) {
	args := m.Called(ctx, branchID, ledger, filter)
	return args.Get(0).([]inventory.InventoryLine), args.Get(1).(int64), args.Error(2)
}

func (m *MockLineRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]inventory.InventoryLine, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).([]inventory.InventoryLine), args.Error(1)
}

func (m *MockLineRepository) FindCandidates(ctx context.Context, branchID, productID uuid.UUID, ledger inventory.Ledger, minQuantity int64) ([]inventory.StockCandidate, error) {
	args := m.Called(ctx, branchID, productID, ledger, minQuantity)
	return args.Get(0).([]inventory.StockCandidate), args.Error(1)
}

func (m *MockLineRepository) Increment(ctx context.Context, line *inventory.InventoryLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockLineRepository) Decrement(ctx context.Context, branchID, productID, batchID uuid.UUID, ledger inventory.Ledger, quantity int64) (bool, error) {
	args := m.Called(ctx, branchID, productID, batchID, ledger, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockLineRepository) SumByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, branchID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLineRepository) SumByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, refType, refID)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockMovementRepository) Find(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

// MockProductReader is a mock implementation of catalog.ProductReader
type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockBranchReader is a mock implementation of partner.BranchReader
type MockBranchReader struct {
	mock.Mock
}

func (m *MockBranchReader) FindByID(ctx context.Context, id uuid.UUID) (*partner.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Branch), args.Error(1)
}

// mockRepos hands the same mocks to code running inside a transaction
type mockRepos struct {
	batches   *MockBatchRepository
	lines     *MockLineRepository
	movements *MockMovementRepository
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		batches:   new(MockBatchRepository),
		lines:     new(MockLineRepository),
		movements: new(MockMovementRepository),
	}
}

func (r *mockRepos) BatchRepo() inventory.BatchRepository {
	return r.batches
}

func (r *mockRepos) LineRepo() inventory.InventoryLineRepository {
	return r.lines
}

func (r *mockRepos) MovementRepo() inventory.StockMovementRepository {
	return r.movements
}

func (r *mockRepos) Execute(ctx context.Context, fn func(TransactionalRepositories) error) error {
	return fn(r)
}

package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	inventoryapp "github.com/thaipharm/backend/internal/application/inventory"
	oemapp "github.com/thaipharm/backend/internal/application/oem"
	salesapp "github.com/thaipharm/backend/internal/application/sales"
	transferapp "github.com/thaipharm/backend/internal/application/transfer"
)

// returns unpacks a (*T, error) pair recorded on a mock
func returns[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// returnsList unpacks a ([]T, int64, error) triple recorded on a mock
func returnsList[T any](args mock.Arguments) ([]T, int64, error) {
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]T), args.Get(1).(int64), args.Error(2)
}

// MockSaleService implements SaleService for testing
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) Checkout(ctx context.Context, req salesapp.CheckoutRequest) (*salesapp.SaleResponse, error) {
	return returns[salesapp.SaleResponse](m.Called(ctx, req))
}

func (m *MockSaleService) Cancel(ctx context.Context, id uuid.UUID, req salesapp.CancelSaleRequest) (*salesapp.SaleResponse, error) {
	return returns[salesapp.SaleResponse](m.Called(ctx, id, req))
}

func (m *MockSaleService) GetByID(ctx context.Context, id uuid.UUID) (*salesapp.SaleResponse, error) {
	return returns[salesapp.SaleResponse](m.Called(ctx, id))
}

func (m *MockSaleService) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*salesapp.SaleResponse, error) {
	return returns[salesapp.SaleResponse](m.Called(ctx, invoiceNumber))
}

func (m *MockSaleService) List(ctx context.Context, filter salesapp.SaleListFilter) ([]salesapp.SaleListItemResponse, int64, error) {
	return returnsList[salesapp.SaleListItemResponse](m.Called(ctx, filter))
}

// MockTransferService implements TransferService for testing
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Request(ctx context.Context, req transferapp.RequestTransferRequest) (*transferapp.TransferResponse, error) {
	return returns[transferapp.TransferResponse](m.Called(ctx, req))
}

func (m *MockTransferService) Ship(ctx context.Context, id, actorID uuid.UUID) (*transferapp.TransferResponse, error) {
	return returns[transferapp.TransferResponse](m.Called(ctx, id, actorID))
}

func (m *MockTransferService) Receive(ctx context.Context, id uuid.UUID, req transferapp.BranchActionRequest) (*transferapp.TransferResponse, error) {
	return returns[transferapp.TransferResponse](m.Called(ctx, id, req))
}

func (m *MockTransferService) Reject(ctx context.Context, id uuid.UUID, req transferapp.BranchActionRequest) (*transferapp.TransferResponse, error) {
	return returns[transferapp.TransferResponse](m.Called(ctx, id, req))
}

func (m *MockTransferService) Cancel(ctx context.Context, id uuid.UUID, req transferapp.CancelTransferRequest) (*transferapp.TransferResponse, error) {
	return returns[transferapp.TransferResponse](m.Called(ctx, id, req))
}

func (m *MockTransferService) GetByID(ctx context.Context, id uuid.UUID) (*transferapp.TransferResponse, error) {
	return returns[transferapp.TransferResponse](m.Called(ctx, id))
}

func (m *MockTransferService) List(ctx context.Context, filter transferapp.TransferListFilter) ([]transferapp.TransferResponse, int64, error) {
	return returnsList[transferapp.TransferResponse](m.Called(ctx, filter))
}

func (m *MockTransferService) ListInTransit(ctx context.Context, branchID *uuid.UUID) ([]transferapp.TransferResponse, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transferapp.TransferResponse), args.Error(1)
}

// MockInventoryService implements InventoryService for testing
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) ReceiveStock(ctx context.Context, req inventoryapp.ReceiveStockRequest) (*inventoryapp.ReceiveStockResponse, error) {
	return returns[inventoryapp.ReceiveStockResponse](m.Called(ctx, req))
}

func (m *MockInventoryService) AdjustStock(ctx context.Context, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockMovementResponse, error) {
	return returns[inventoryapp.StockMovementResponse](m.Called(ctx, req))
}

func (m *MockInventoryService) GetStock(ctx context.Context, branchID, productID uuid.UUID) (*inventoryapp.StockSummaryResponse, error) {
	return returns[inventoryapp.StockSummaryResponse](m.Called(ctx, branchID, productID))
}

func (m *MockInventoryService) ListLines(ctx context.Context, branchID uuid.UUID, filter inventoryapp.LineListFilter) ([]inventoryapp.InventoryLineResponse, int64, error) {
	return returnsList[inventoryapp.InventoryLineResponse](m.Called(ctx, branchID, filter))
}

func (m *MockInventoryService) ListMovements(ctx context.Context, filter inventoryapp.MovementListFilter) ([]inventoryapp.StockMovementResponse, int64, error) {
	return returnsList[inventoryapp.StockMovementResponse](m.Called(ctx, filter))
}

func (m *MockInventoryService) GetBatch(ctx context.Context, id uuid.UUID) (*inventoryapp.BatchResponse, error) {
	return returns[inventoryapp.BatchResponse](m.Called(ctx, id))
}

func (m *MockInventoryService) ListBatches(ctx context.Context, productID uuid.UUID, filter inventoryapp.BatchListFilter) ([]inventoryapp.BatchResponse, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.BatchResponse), args.Error(1)
}

// MockBatchExpirer implements BatchExpirer for testing
type MockBatchExpirer struct {
	mock.Mock
}

func (m *MockBatchExpirer) DeactivateExpired(ctx context.Context) (*inventoryapp.ExpiryStats, error) {
	return returns[inventoryapp.ExpiryStats](m.Called(ctx))
}

// MockOemService implements OemService for testing
type MockOemService struct {
	mock.Mock
}

func (m *MockOemService) CreateOrder(ctx context.Context, req oemapp.CreateOrderRequest) (*oemapp.OrderResponse, error) {
	return returns[oemapp.OrderResponse](m.Called(ctx, req))
}

func (m *MockOemService) Confirm(ctx context.Context, id uuid.UUID) (*oemapp.OrderResponse, error) {
	return returns[oemapp.OrderResponse](m.Called(ctx, id))
}

func (m *MockOemService) StartProduction(ctx context.Context, id uuid.UUID) (*oemapp.OrderResponse, error) {
	return returns[oemapp.OrderResponse](m.Called(ctx, id))
}

func (m *MockOemService) Cancel(ctx context.Context, id uuid.UUID, req oemapp.CancelOrderRequest) (*oemapp.OrderResponse, error) {
	return returns[oemapp.OrderResponse](m.Called(ctx, id, req))
}

func (m *MockOemService) Receive(ctx context.Context, orderID uuid.UUID, req oemapp.ReceiveGoodsRequest) (*oemapp.GoodsReceivingResponse, error) {
	return returns[oemapp.GoodsReceivingResponse](m.Called(ctx, orderID, req))
}

func (m *MockOemService) GetOrder(ctx context.Context, id uuid.UUID) (*oemapp.OrderResponse, error) {
	return returns[oemapp.OrderResponse](m.Called(ctx, id))
}

func (m *MockOemService) ListOrders(ctx context.Context, filter oemapp.OrderListFilter) ([]oemapp.OrderResponse, int64, error) {
	return returnsList[oemapp.OrderResponse](m.Called(ctx, filter))
}

func (m *MockOemService) ListReceivings(ctx context.Context, orderID uuid.UUID) ([]oemapp.GoodsReceivingResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oemapp.GoodsReceivingResponse), args.Error(1)
}

func (m *MockOemService) GetReceiving(ctx context.Context, id uuid.UUID) (*oemapp.GoodsReceivingResponse, error) {
	return returns[oemapp.GoodsReceivingResponse](m.Called(ctx, id))
}

package oem

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/oem"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/logger"
	"github.com/thaipharm/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OemService places production orders with OEM suppliers and reconciles the
// batches they deliver into branch stock
type OemService struct {
	scope          TransactionScope
	orders         oem.OrderRepository
	receivings     oem.GoodsReceivingRepository
	suppliers      partner.SupplierReader
	branches       partner.BranchReader
	products       catalog.ProductReader
	ledger         *appinventory.Ledger
	markup         decimal.Decimal
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewOemService creates a new OemService. markup prices VAT-exempt receipts
// for products without a catalog selling price.
func NewOemService(
	scope TransactionScope,
	orders oem.OrderRepository,
	receivings oem.GoodsReceivingRepository,
	suppliers partner.SupplierReader,
	branches partner.BranchReader,
	products catalog.ProductReader,
	markup decimal.Decimal,
	logger *zap.Logger,
) *OemService {
	return &OemService{
		scope:      scope,
		orders:     orders,
		receivings: receivings,
		suppliers:  suppliers,
		branches:   branches,
		products:   products,
		ledger:     appinventory.NewLedger(),
		markup:     markup,
		logger:     logger,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// WithClock replaces the clock used for document numbers and receipt times
func (s *OemService) WithClock(now func() time.Time) *OemService {
	s.now = now
	return s
}

// CreateOrder creates a draft order. The supplier must be an active OEM.
func (s *OemService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsOEM() {
		return nil, shared.RuleViolation("supplier %s is a %s, not an OEM", supplier.Code, supplier.Type)
	}
	if !supplier.IsActive() {
		return nil, shared.RuleViolation("supplier %s is not active", supplier.Code)
	}
	branch, err := s.branches.FindByID(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}

	items := make([]oem.ItemInput, len(req.Items))
	for i, in := range req.Items {
		if _, err := s.products.FindByID(ctx, in.ProductID); err != nil {
			return nil, err
		}
		items[i] = oem.ItemInput{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
	}

	var order *oem.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Sequences().Next(ctx, shared.PrefixOemOrder, branch.Code, s.now())
		if err != nil {
			return err
		}
		order, err = oem.NewOrder(number, supplier.ID, branch.ID, items, req.CreatedBy, req.Notes)
		if err != nil {
			return err
		}
		return repos.OrderRepo().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("OEM order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))
	s.publishDomainEvents(ctx, order)
	response := ToOrderResponse(order)
	return &response, nil
}

// Confirm moves a draft order to CONFIRMED
func (s *OemService) Confirm(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.changeStatus(ctx, id, "OEM order confirmed", (*oem.Order).Confirm)
}

// StartProduction records that the OEM has started the production run
func (s *OemService) StartProduction(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.changeStatus(ctx, id, "OEM production started", (*oem.Order).StartProduction)
}

// Cancel cancels an order that has not received anything
func (s *OemService) Cancel(ctx context.Context, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.changeStatus(ctx, id, "OEM order cancelled", func(o *oem.Order) error {
		return o.Cancel(req.Reason)
	})
}

func (s *OemService) changeStatus(ctx context.Context, id uuid.UUID, msg string, change func(*oem.Order) error) (*OrderResponse, error) {
	var order *oem.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := change(order); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(msg,
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status.String()))
	s.publishDomainEvents(ctx, order)
	response := ToOrderResponse(order)
	return &response, nil
}

// Receive records a delivery against an order in one transaction. Each
// accepted quantity is registered under its batch and credited to the
// receiving branch, in the VAT or non-VAT ledger by the product's tax status,
// at the order's unit price. Rejected quantities only update the counters.
func (s *OemService) Receive(ctx context.Context, orderID uuid.UUID, req ReceiveGoodsRequest) (_ *GoodsReceivingResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "oem", "receive", attribute.String("order_id", orderID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	now := s.now()
	receivedAt := now
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	lines := make([]oem.ReceivingLine, len(req.Items))
	for i, in := range req.Items {
		lines[i] = oem.ReceivingLine{
			OrderItemID: in.OrderItemID,
			BatchNumber: in.BatchNumber,
			LotNumber:   in.LotNumber,
			ExpiryDate:  in.ExpiryDate,
			ReceivedQty: in.ReceivedQty,
			AcceptedQty: in.AcceptedQty,
			RejectedQty: in.RejectedQty,
		}
		if err := lines[i].Validate(); err != nil {
			return nil, err
		}
	}

	current, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	branchID := current.BranchID
	if req.BranchID != nil {
		branchID = *req.BranchID
	}
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(current.Items))
	for _, item := range current.Items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		products[item.ProductID] = product
	}

	var (
		gr    *oem.GoodsReceiving
		order *oem.Order
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		number, err := repos.Sequences().Next(ctx, shared.PrefixGoodsReceiving, branch.Code, now)
		if err != nil {
			return err
		}
		gr, err = oem.NewGoodsReceiving(number, order, branch.ID, req.ReceivedBy, lines, req.Notes, receivedAt)
		if err != nil {
			return err
		}

		for i := range gr.Items {
			item := &gr.Items[i]
			if item.AcceptedQty == 0 {
				continue
			}
			batchID, err := s.stockIn(ctx, repos, gr, item, products[item.ProductID])
			if err != nil {
				return err
			}
			item.BatchID = &batchID
		}

		if err := order.ApplyReceiving(gr); err != nil {
			return err
		}
		if err := repos.ReceivingRepo().Create(ctx, gr); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		logger.L(ctx, s.logger).Warn("Goods receiving rejected", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Goods received",
		zap.String("gr_number", gr.GRNumber),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("accepted", gr.AcceptedQuantity()),
		zap.String("order_status", order.Status.String()))

	gr.AddDomainEvent(oem.NewGoodsReceivedEvent(gr, order))
	s.publishDomainEvents(ctx, gr)
	response := ToGoodsReceivingResponse(gr)
	response.OrderStatus = order.Status
	return &response, nil
}

// stockIn registers the delivered batch and credits its accepted quantity
func (s *OemService) stockIn(
	ctx context.Context,
	repos TransactionalRepositories,
	gr *oem.GoodsReceiving,
	item *oem.GoodsReceivingItem,
	product *catalog.Product,
) (uuid.UUID, error) {
	candidate, err := inventory.NewBatch(product.ID, item.BatchNumber, item.LotNumber, item.ExpiryDate, item.UnitPrice)
	if err != nil {
		return uuid.Nil, err
	}
	batch, err := repos.BatchRepo().GetOrCreate(ctx, candidate)
	if err != nil {
		return uuid.Nil, err
	}
	if err := appinventory.VerifyBatchExpiry(batch, candidate); err != nil {
		return uuid.Nil, err
	}
	cost, err := appinventory.CostingFor(product, item.UnitPrice, s.markup)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.ledger.Receive(ctx, repos, appinventory.StockIn{
		BranchID:      gr.BranchID,
		ProductID:     product.ID,
		BatchID:       batch.ID,
		Quantity:      item.AcceptedQty,
		Cost:          cost,
		MovementType:  inventory.MovementIn,
		ReferenceType: inventory.ReferenceGoodsReceiving,
		ReferenceID:   gr.ID,
		ActorID:       gr.ReceivedBy,
	}); err != nil {
		return uuid.Nil, err
	}
	return batch.ID, nil
}

// GetOrder retrieves an order with its items
func (s *OemService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// ListOrders lists orders
func (s *OemService) ListOrders(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	list, total, err := s.orders.Find(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]OrderResponse, len(list))
	for i := range list {
		responses[i] = ToOrderResponse(&list[i])
	}
	return responses, total, nil
}

// ListReceivings lists the goods receivings recorded against an order
func (s *OemService) ListReceivings(ctx context.Context, orderID uuid.UUID) ([]GoodsReceivingResponse, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	list, err := s.receivings.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]GoodsReceivingResponse, len(list))
	for i := range list {
		responses[i] = ToGoodsReceivingResponse(&list[i])
	}
	return responses, nil
}

// GetReceiving retrieves one goods receiving
func (s *OemService) GetReceiving(ctx context.Context, id uuid.UUID) (*GoodsReceivingResponse, error) {
	gr, err := s.receivings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToGoodsReceivingResponse(gr)
	return &response, nil
}

func (s *OemService) publishDomainEvents(ctx context.Context, source shared.EventSource) {
	if err := shared.PublishPending(ctx, s.eventPublisher, source); err != nil {
		s.logger.Error("Failed to publish OEM events", zap.Error(err))
	}
}

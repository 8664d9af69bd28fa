package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Config holds the ledger rules loaded from the [inventory] config section
type Config struct {
	// NonVatMarkup prices VAT-exempt stock when the catalog has no selling price
	NonVatMarkup decimal.Decimal
	// SellExpired lets FEFO pick batches past their expiry date
	SellExpired bool
}

// DefaultConfig returns the default ledger rules
func DefaultConfig() Config {
	return Config{
		NonVatMarkup: inventory.DefaultNonVatMarkup,
	}
}

// InventoryService handles receipts, adjustments and stock queries
type InventoryService struct {
	scope          TransactionScope
	ledger         *Ledger
	batches        inventory.BatchRepository
	lines          inventory.InventoryLineRepository
	movements      inventory.StockMovementRepository
	products       catalog.ProductReader
	branches       partner.BranchReader
	eventPublisher shared.EventPublisher
	monitor        *ReorderMonitor
	config         Config
	logger         *zap.Logger
	now            func() time.Time
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	scope TransactionScope,
	batches inventory.BatchRepository,
	lines inventory.InventoryLineRepository,
	movements inventory.StockMovementRepository,
	products catalog.ProductReader,
	branches partner.BranchReader,
	config Config,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		scope:     scope,
		ledger:    NewLedger(),
		batches:   batches,
		lines:     lines,
		movements: movements,
		products:  products,
		branches:  branches,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
	s.monitor = NewReorderMonitor(s.products, s.lines, publisher, s.logger)
}

// WithClock replaces the clock used for expiry checks
func (s *InventoryService) WithClock(now func() time.Time) *InventoryService {
	s.now = now
	return s
}

func (s *InventoryService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish inventory events",
			zap.String("event_type", events[0].EventType()),
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}

// ReceiveStock registers the batch if it is new and adds the quantity to the
// branch line of the product's ledger
func (s *InventoryService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*ReceiveStockResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.InvalidInput("quantity must be positive")
	}
	if _, err := s.branches.FindByID(ctx, req.BranchID); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.RuleViolation("product %s is inactive", product.Label())
	}
	cost, err := CostingFor(product, req.UnitCost, s.config.NonVatMarkup)
	if err != nil {
		return nil, err
	}
	candidate, err := inventory.NewBatch(product.ID, req.BatchNumber, req.LotNumber, req.ExpiryDate, req.UnitCost)
	if err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().GetOrCreate(ctx, candidate)
		if err != nil {
			return err
		}
		if err := VerifyBatchExpiry(batch, candidate); err != nil {
			return err
		}
		movement, err = s.ledger.Receive(ctx, repos, StockIn{
			BranchID:      req.BranchID,
			ProductID:     product.ID,
			BatchID:       batch.ID,
			Quantity:      req.Quantity,
			Location:      req.Location,
			Cost:          cost,
			MovementType:  inventory.MovementIn,
			ReferenceType: inventory.ReferenceReceipt,
			ReferenceID:   uuid.New(),
			ActorID:       req.ActorID,
		})
		return err
	})
	if err != nil {
		s.logger.Warn("Stock receipt rejected",
			zap.String("branch_id", req.BranchID.String()),
			zap.String("product_id", req.ProductID.String()),
			zap.String("batch_number", req.BatchNumber),
			zap.Error(err))
		return nil, err
	}

	batch, err := s.batches.FindByID(ctx, movement.BatchID)
	if err != nil {
		return nil, err
	}
	line, err := s.lines.FindByKey(ctx, movement.BranchID, movement.ProductID, movement.BatchID, movement.Ledger)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock received",
		zap.String("branch_id", req.BranchID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("ledger", movement.Ledger.String()),
		zap.Int64("quantity", req.Quantity))

	return &ReceiveStockResponse{
		Batch:    ToBatchResponse(batch, s.now()),
		Line:     ToInventoryLineResponse(line),
		Movement: ToStockMovementResponse(movement),
	}, nil
}

// AdjustStock applies a manual correction to one existing line.
// ADJUSTMENT_IN adds stock at the line's cost; ADJUSTMENT_OUT, EXPIRED and
// DAMAGED remove it.
func (s *InventoryService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockMovementResponse, error) {
	if !req.MovementType.IsAdjustment() {
		return nil, shared.InvalidInput("movement type %s is not an adjustment", req.MovementType)
	}
	if !req.Ledger.IsValid() {
		return nil, shared.InvalidInput("invalid ledger %q", req.Ledger)
	}
	if req.Quantity <= 0 {
		return nil, shared.InvalidInput("quantity must be positive")
	}
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	adjustmentID := uuid.New()
	var movement *inventory.StockMovement
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.MovementType.IsIncrease() {
			line, err := repos.LineRepo().FindByKey(ctx, req.BranchID, req.ProductID, req.BatchID, req.Ledger)
			if err != nil {
				return err
			}
			movement, err = s.ledger.Receive(ctx, repos, StockIn{
				BranchID:      req.BranchID,
				ProductID:     req.ProductID,
				BatchID:       req.BatchID,
				Quantity:      req.Quantity,
				Location:      line.Location,
				Cost:          line.Cost,
				MovementType:  req.MovementType,
				ReferenceType: inventory.ReferenceAdjustment,
				ReferenceID:   adjustmentID,
				Reason:        req.Reason,
				ActorID:       req.ActorID,
			})
			return err
		}
		var err error
		movement, err = s.ledger.Deduct(ctx, repos, StockOut{
			BranchID:      req.BranchID,
			ProductID:     req.ProductID,
			BatchID:       req.BatchID,
			Ledger:        req.Ledger,
			Quantity:      req.Quantity,
			Subject:       product.Label(),
			MovementType:  req.MovementType,
			ReferenceType: inventory.ReferenceAdjustment,
			ReferenceID:   adjustmentID,
			Reason:        req.Reason,
			ActorID:       req.ActorID,
		})
		return err
	})
	if err != nil {
		s.logger.Warn("Stock adjustment rejected",
			zap.String("branch_id", req.BranchID.String()),
			zap.String("product_id", req.ProductID.String()),
			zap.String("movement_type", req.MovementType.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Stock adjusted",
		zap.String("branch_id", req.BranchID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("movement_type", req.MovementType.String()),
		zap.Int64("quantity", req.Quantity),
		zap.String("reason", req.Reason))

	s.publish(ctx, inventory.NewStockAdjustedEvent(movement))
	if !req.MovementType.IsIncrease() {
		s.monitor.Check(ctx, req.BranchID, req.ProductID)
	}
	response := ToStockMovementResponse(movement)
	return &response, nil
}

// GetStock returns a product's lines at a branch with per-ledger totals
func (s *InventoryService) GetStock(ctx context.Context, branchID, productID uuid.UUID) (*StockSummaryResponse, error) {
	lines, err := s.lines.FindByBranchAndProduct(ctx, branchID, productID, "")
	if err != nil {
		return nil, err
	}
	summary := &StockSummaryResponse{
		BranchID:   branchID,
		ProductID:  productID,
		TotalValue: decimal.Zero,
		Lines:      ToInventoryLineResponses(lines),
	}
	for i := range lines {
		switch lines[i].Ledger() {
		case inventory.LedgerVAT:
			summary.VatQuantity += lines[i].Quantity
		case inventory.LedgerNonVAT:
			summary.NonVatQuantity += lines[i].Quantity
		}
		summary.TotalValue = summary.TotalValue.Add(lines[i].StockValue())
	}
	summary.TotalQuantity = summary.VatQuantity + summary.NonVatQuantity
	return summary, nil
}

// ListLines lists a branch's inventory lines
func (s *InventoryService) ListLines(ctx context.Context, branchID uuid.UUID, filter LineListFilter) ([]InventoryLineResponse, int64, error) {
	domainFilter := shared.NewPage(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.InStock {
		domainFilter.Filters["in_stock"] = true
	}
	lines, total, err := s.lines.FindByBranch(ctx, branchID, filter.Ledger, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInventoryLineResponses(lines), total, nil
}

// ListMovements lists the movement log, newest first
func (s *InventoryService) ListMovements(ctx context.Context, filter MovementListFilter) ([]StockMovementResponse, int64, error) {
	domainFilter := inventory.MovementFilter{
		Filter:        shared.NewPage(filter.Page, filter.PageSize, "", ""),
		BranchID:      filter.BranchID,
		ProductID:     filter.ProductID,
		BatchID:       filter.BatchID,
		Ledger:        filter.Ledger,
		ReferenceType: filter.ReferenceType,
		ReferenceID:   filter.ReferenceID,
		From:          filter.From,
		To:            endOfDay(filter.To),
	}
	if filter.MovementType != "" {
		domainFilter.Types = []inventory.MovementType{filter.MovementType}
	}
	movements, total, err := s.movements.Find(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses, total, nil
}

// GetBatch retrieves a batch by ID
func (s *InventoryService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch, s.now())
	return &response, nil
}

// ListBatches lists a product's batches, earliest expiry first by default
func (s *InventoryService) ListBatches(ctx context.Context, productID uuid.UUID, filter BatchListFilter) ([]BatchResponse, error) {
	domainFilter := shared.NewPage(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	batches, err := s.batches.FindByProduct(ctx, productID, domainFilter)
	if err != nil {
		return nil, err
	}
	asOf := s.now()
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i], asOf)
	}
	return responses, nil
}

// VerifyBatchExpiry rejects a receipt that names an existing batch with a different expiry date
func VerifyBatchExpiry(stored, received *inventory.Batch) error {
	if stored.ExpiryDate.Format("2006-01-02") != received.ExpiryDate.Format("2006-01-02") {
		return shared.InvalidInput("batch %s is registered with expiry %s",
			stored.BatchNumber, stored.ExpiryDate.Format("2006-01-02"))
	}
	return nil
}

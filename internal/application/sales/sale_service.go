package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/domain/sales"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/logger"
	"github.com/thaipharm/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Config holds checkout rules
type Config struct {
	// SellExpired lets checkout pick or accept batches past their expiry date
	SellExpired bool
	Idempotency shared.IdempotencyConfig
}

// DefaultConfig returns the default checkout rules
func DefaultConfig() Config {
	return Config{
		Idempotency: shared.DefaultIdempotencyConfig(),
	}
}

// Metrics receives sale outcomes
type Metrics interface {
	RecordSale(ctx context.Context, branchID uuid.UUID, total decimal.Decimal, lines int)
	RecordSaleCancelled(ctx context.Context, branchID uuid.UUID)
	RecordStockRejection(ctx context.Context, operation string)
}

// SaleService handles point-of-sale checkout and cancellation
type SaleService struct {
	scope          TransactionScope
	sales          sales.SaleRepository
	lines          inventory.InventoryLineRepository
	products       catalog.ProductReader
	branches       partner.BranchReader
	ledger         *appinventory.Ledger
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	monitor        *appinventory.ReorderMonitor
	metrics        Metrics
	config         Config
	logger         *zap.Logger
	now            func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope TransactionScope,
	saleRepo sales.SaleRepository,
	lines inventory.InventoryLineRepository,
	products catalog.ProductReader,
	branches partner.BranchReader,
	config Config,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		scope:    scope,
		sales:    saleRepo,
		lines:    lines,
		products: products,
		branches: branches,
		ledger:   appinventory.NewLedger(),
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
	s.monitor = appinventory.NewReorderMonitor(s.products, s.lines, publisher, s.logger)
}

// SetIdempotencyStore sets the store that deduplicates retried checkouts
func (s *SaleService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetMetrics sets the recorder for sale metrics
func (s *SaleService) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// WithClock replaces the clock used for invoice dates and expiry checks
func (s *SaleService) WithClock(now func() time.Time) *SaleService {
	s.now = now
	return s
}

// Checkout sells the requested items in one transaction: it picks a batch per
// line, deducts stock, numbers the invoice and stores the sale. A repeated
// idempotency key returns the sale created by the first request.
func (s *SaleService) Checkout(ctx context.Context, req CheckoutRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "checkout",
		attribute.String("branch_id", req.BranchID.String()),
		attribute.Int("items", len(req.Items)))
	defer func() { telemetry.EndSpan(span, err) }()

	if len(req.Items) == 0 {
		return nil, shared.InvalidInput("sale must have at least one item")
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	req.IdempotencyKey = key
	reserved := false
	if key != "" && s.config.Idempotency.Enabled {
		existing, err := s.replay(ctx, key)
		if err != nil || existing != nil {
			return existing, err
		}
		if s.idempotency != nil {
			ok, err := s.idempotency.Reserve(ctx, key, s.config.Idempotency.TTL)
			if err != nil {
				return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
			}
			if !ok {
				if existing, err := s.replay(ctx, key); err != nil || existing != nil {
					return existing, err
				}
				return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
					"a checkout with this idempotency key is already in progress")
			}
			reserved = true
		}
	}

	sale, err := s.checkout(ctx, req)
	if err != nil {
		if reserved {
			if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
			}
		}
		// A concurrent request with the same key won the unique index
		if key != "" && errors.Is(err, shared.ErrAlreadyExists) {
			if existing, replayErr := s.replay(ctx, key); replayErr == nil && existing != nil {
				return existing, nil
			}
		}
		if errors.Is(err, shared.ErrInsufficientStock) && s.metrics != nil {
			s.metrics.RecordStockRejection(ctx, "checkout")
		}
		logger.L(ctx, s.logger).Warn("Checkout rejected",
			zap.String("branch_id", req.BranchID.String()),
			zap.Int("lines", len(req.Items)),
			zap.Error(err))
		return nil, err
	}
	if reserved {
		if err := s.idempotency.Complete(ctx, key, sale.ID.String(), s.config.Idempotency.TTL); err != nil {
			s.logger.Warn("Failed to complete idempotency key", zap.String("key", key), zap.Error(err))
		}
	}

	logger.L(ctx, s.logger).Info("Sale completed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.String("branch_id", sale.BranchID.String()),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
		zap.String("payment_method", string(sale.PaymentMethod)))

	s.publishDomainEvents(ctx, sale)
	if s.metrics != nil {
		s.metrics.RecordSale(ctx, sale.BranchID, sale.TotalAmount, len(sale.Items))
	}
	s.monitor.Check(ctx, sale.BranchID, soldProducts(sale)...)

	response := ToSaleResponse(sale)
	return &response, nil
}

func (s *SaleService) checkout(ctx context.Context, req CheckoutRequest) (*sales.Sale, error) {
	branch, err := s.branches.FindByID(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, shared.RuleViolation("branch %s is inactive", branch.Code)
	}
	products := make(map[uuid.UUID]*catalog.Product, len(req.Items))
	for _, item := range req.Items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, shared.RuleViolation("product %s is inactive", product.Label())
		}
		products[item.ProductID] = product
	}

	now := s.now()
	var sale *sales.Sale
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		items, err := s.buildItems(ctx, repos, req, products, now)
		if err != nil {
			return err
		}

		invoiceNumber, err := repos.Sequences().Next(ctx, shared.PrefixInvoice, branch.Code, now)
		if err != nil {
			return err
		}
		sale, err = sales.NewSale(sales.NewSaleInput{
			BranchID:         req.BranchID,
			InvoiceNumber:    invoiceNumber,
			CashierID:        req.CashierID,
			CustomerName:     req.CustomerName,
			PaymentMethod:    req.PaymentMethod,
			AmountPaid:       req.AmountPaid,
			PaymentReference: req.PaymentReference,
			IdempotencyKey:   req.IdempotencyKey,
		}, items)
		if err != nil {
			return err
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			if _, err := s.ledger.Deduct(ctx, repos, appinventory.StockOut{
				BranchID:      sale.BranchID,
				ProductID:     item.ProductID,
				BatchID:       *item.BatchID,
				Ledger:        item.Ledger(),
				Quantity:      item.Quantity,
				Subject:       products[item.ProductID].Label(),
				MovementType:  inventory.MovementOut,
				ReferenceType: inventory.ReferenceSale,
				ReferenceID:   sale.ID,
				ActorID:       req.CashierID,
			}); err != nil {
				return err
			}
		}
		return repos.SaleRepo().Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// buildItems prices each line and resolves its batch. Lines resolved by FEFO
// see the quantities earlier lines of the same checkout already claimed,
// whether those lines named their batch or not.
func (s *SaleService) buildItems(
	ctx context.Context,
	repos TransactionalRepositories,
	req CheckoutRequest,
	products map[uuid.UUID]*catalog.Product,
	now time.Time,
) ([]sales.SaleItem, error) {
	claimed := make(map[uuid.UUID]int64)
	items := make([]sales.SaleItem, 0, len(req.Items))
	for _, in := range req.Items {
		product := products[in.ProductID]

		isVat := product.IsVat()
		if in.IsVat != nil {
			isVat = *in.IsVat
		}
		var unitPrice decimal.Decimal
		switch {
		case in.UnitPrice != nil:
			unitPrice = *in.UnitPrice
		case product.SellingPrice != nil:
			unitPrice = *product.SellingPrice
		default:
			return nil, shared.InvalidInput("no selling price for %s", product.Label())
		}
		vatRate := product.VatRate
		if in.VatRate != nil {
			vatRate = *in.VatRate
		}

		batchID, err := s.resolveBatch(ctx, repos, req.BranchID, product, inventory.LedgerFor(isVat), in, claimed, now)
		if err != nil {
			return nil, err
		}

		item, err := sales.NewSaleItem(sales.SaleItemInput{
			ProductID:   product.ID,
			ProductSKU:  product.SKU,
			ProductName: product.Name,
			BatchID:     batchID,
			IsVat:       isVat,
			Quantity:    in.Quantity,
			UnitPrice:   unitPrice,
			Discount:    in.Discount,
			VatRate:     vatRate,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// resolveBatch returns the explicit batch of a line after checking it, or the
// FEFO pick among the branch's lines in the ledger that can cover the whole line.
// Both record the line's quantity in claimed.
func (s *SaleService) resolveBatch(
	ctx context.Context,
	repos TransactionalRepositories,
	branchID uuid.UUID,
	product *catalog.Product,
	ledger inventory.Ledger,
	in CheckoutItemRequest,
	claimed map[uuid.UUID]int64,
	now time.Time,
) (uuid.UUID, error) {
	if in.BatchID != nil {
		batch, err := repos.BatchRepo().FindByID(ctx, *in.BatchID)
		if err != nil {
			return uuid.Nil, err
		}
		if batch.ProductID != product.ID {
			return uuid.Nil, shared.InvalidInput("batch %s is not a batch of %s", batch.BatchNumber, product.Label())
		}
		if !s.config.SellExpired && batch.IsExpired(now) {
			return uuid.Nil, shared.RuleViolation("batch %s of %s expired on %s",
				batch.BatchNumber, product.Label(), batch.ExpiryDate.Format("2006-01-02"))
		}
		// later FEFO lines must not pick the units this line takes
		line, err := repos.LineRepo().FindByKey(ctx, branchID, product.ID, batch.ID, ledger)
		switch {
		case err == nil:
			claimed[line.ID] += in.Quantity
		case !errors.Is(err, shared.ErrNotFound):
			return uuid.Nil, err
		}
		return batch.ID, nil
	}

	candidates, err := repos.LineRepo().FindCandidates(ctx, branchID, product.ID, ledger, 1)
	if err != nil {
		return uuid.Nil, err
	}
	var available int64
	for i := range candidates {
		candidates[i].Line.Quantity -= claimed[candidates[i].Line.ID]
		if candidates[i].Batch.IsActive && (s.config.SellExpired || !candidates[i].Batch.IsExpired(now)) {
			available += candidates[i].Line.Quantity
		}
	}
	selector := inventory.FEFOSelector{AllowExpired: s.config.SellExpired}
	chosen, ok := selector.Select(candidates, in.Quantity, now)
	if !ok {
		return uuid.Nil, shared.InsufficientStock(product.Label(), in.Quantity, available)
	}
	claimed[chosen.Line.ID] += in.Quantity
	return chosen.Batch.ID, nil
}

// Cancel reverses a completed sale: every line's quantity goes back to the
// batch it was sold from with a RETURN_IN movement, then the sale is marked
// CANCELLED. A line without a recorded batch blocks the whole cancellation.
func (s *SaleService) Cancel(ctx context.Context, id uuid.UUID, req CancelSaleRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "cancel", attribute.String("sale_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var sale *sales.Sale
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := sale.Cancel(req.Reason, req.ActorID); err != nil {
			return err
		}
		for i := range sale.Items {
			if sale.Items[i].BatchID == nil {
				return shared.RuleViolation("sale %s has a line for %s without a batch and cannot be reversed",
					sale.InvoiceNumber, sale.Items[i].ProductSKU)
			}
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			line, err := repos.LineRepo().FindByKey(ctx, sale.BranchID, item.ProductID, *item.BatchID, item.Ledger())
			if err != nil {
				return err
			}
			if _, err := s.ledger.Receive(ctx, repos, appinventory.StockIn{
				BranchID:      sale.BranchID,
				ProductID:     item.ProductID,
				BatchID:       *item.BatchID,
				Quantity:      item.Quantity,
				Location:      line.Location,
				Cost:          line.Cost,
				MovementType:  inventory.MovementReturnIn,
				ReferenceType: inventory.ReferenceSaleCancel,
				ReferenceID:   sale.ID,
				Reason:        sale.CancelReason,
				ActorID:       req.ActorID,
			}); err != nil {
				return err
			}
		}
		return repos.SaleRepo().SaveWithLock(ctx, sale)
	})
	if err != nil {
		logger.L(ctx, s.logger).Warn("Sale cancellation rejected", zap.String("sale_id", id.String()), zap.Error(err))
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Sale cancelled",
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.String("reason", sale.CancelReason))

	s.publishDomainEvents(ctx, sale)
	if s.metrics != nil {
		s.metrics.RecordSaleCancelled(ctx, sale.BranchID)
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale with its lines and payment
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByInvoiceNumber retrieves a sale by its invoice number
func (s *SaleService) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*SaleResponse, error) {
	sale, err := s.sales.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List lists sale headers
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleListItemResponse, int64, error) {
	list, total, err := s.sales.Find(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SaleListItemResponse, len(list))
	for i := range list {
		responses[i] = ToSaleListItemResponse(&list[i])
	}
	return responses, total, nil
}

// replay returns the sale already created under key, or nil when there is none
func (s *SaleService) replay(ctx context.Context, key string) (*SaleResponse, error) {
	if s.idempotency != nil {
		saleID, err := s.idempotency.Lookup(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed, falling back to database", zap.Error(err))
		} else if saleID != "" {
			id, err := uuid.Parse(saleID)
			if err == nil {
				return s.GetByID(ctx, id)
			}
		}
	}
	sale, err := s.sales.FindByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.logger.Info("Checkout replayed", zap.String("sale_id", sale.ID.String()), zap.String("key", key))
	response := ToSaleResponse(sale)
	return &response, nil
}

// publishDomainEvents publishes and clears the sale's pending events.
// Publish errors are logged; the sale has already committed.
func (s *SaleService) publishDomainEvents(ctx context.Context, sale *sales.Sale) {
	if err := shared.PublishPending(ctx, s.eventPublisher, sale); err != nil {
		s.logger.Error("Failed to publish sale events", zap.String("sale_id", sale.ID.String()), zap.Error(err))
	}
}

func soldProducts(sale *sales.Sale) []uuid.UUID {
	ids := make([]uuid.UUID, len(sale.Items))
	for i := range sale.Items {
		ids[i] = sale.Items[i].ProductID
	}
	return ids
}

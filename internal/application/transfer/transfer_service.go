package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/domain/transfer"
	"github.com/thaipharm/backend/internal/infrastructure/logger"
	"github.com/thaipharm/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransferService moves stock between branches. Ship and receive are
// separate transactions; between them the shipped quantity belongs to no
// branch and is reported by ListInTransit.
type TransferService struct {
	scope          TransactionScope
	transfers      transfer.StockTransferRepository
	lines          inventory.InventoryLineRepository
	products       catalog.ProductReader
	branches       partner.BranchReader
	ledger         *appinventory.Ledger
	allocator      inventory.OldestRowAllocator
	eventPublisher shared.EventPublisher
	monitor        *appinventory.ReorderMonitor
	logger         *zap.Logger
	now            func() time.Time
}

// NewTransferService creates a new TransferService
func NewTransferService(
	scope TransactionScope,
	transfers transfer.StockTransferRepository,
	lines inventory.InventoryLineRepository,
	products catalog.ProductReader,
	branches partner.BranchReader,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		scope:     scope,
		transfers: transfers,
		lines:     lines,
		products:  products,
		branches:  branches,
		ledger:    appinventory.NewLedger(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
	s.monitor = appinventory.NewReorderMonitor(s.products, s.lines, publisher, s.logger)
}

// WithClock replaces the clock used for transfer numbers
func (s *TransferService) WithClock(now func() time.Time) *TransferService {
	s.now = now
	return s
}

// Request creates a pending transfer. No stock moves until Ship.
func (s *TransferService) Request(ctx context.Context, req RequestTransferRequest) (*TransferResponse, error) {
	if req.SourceBranchID == req.TargetBranchID {
		return nil, shared.InvalidInput("source and target branch must differ")
	}
	source, err := s.branches.FindByID(ctx, req.SourceBranchID)
	if err != nil {
		return nil, err
	}
	target, err := s.branches.FindByID(ctx, req.TargetBranchID)
	if err != nil {
		return nil, err
	}
	if !source.IsActive || !target.IsActive {
		return nil, shared.RuleViolation("transfers need two active branches")
	}

	items := make([]transfer.ItemInput, len(req.Items))
	for i, in := range req.Items {
		if in.Quantity <= 0 {
			return nil, shared.InvalidInput("transfer quantity must be positive")
		}
		if _, err := s.products.FindByID(ctx, in.ProductID); err != nil {
			return nil, err
		}
		items[i] = transfer.ItemInput{
			ProductID: in.ProductID,
			Ledger:    in.Ledger,
			Quantity:  in.Quantity,
		}
	}

	var t *transfer.StockTransfer
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Sequences().Next(ctx, shared.PrefixTransfer, source.Code, s.now())
		if err != nil {
			return err
		}
		t, err = transfer.NewStockTransfer(number, source.ID, target.ID, items, req.RequestedBy, req.Notes)
		if err != nil {
			return err
		}
		return repos.TransferRepo().Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfer requested",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_number", t.TransferNumber),
		zap.String("source_branch_id", source.ID.String()),
		zap.String("target_branch_id", target.ID.String()))
	s.publishDomainEvents(ctx, t)
	response := ToTransferResponse(t)
	return &response, nil
}

// Ship deducts every item from the source branch, oldest line first and
// spanning lines when one is not enough, and records the manifest of batches
// shipped. A shortfall on any item aborts the whole shipment.
func (s *TransferService) Ship(ctx context.Context, id, actorID uuid.UUID) (_ *TransferResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "ship", attribute.String("transfer_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	requested, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	labels := s.loadLabels(ctx, requested)

	var t *transfer.StockTransfer
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		t, err = repos.TransferRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(transfer.TransferStatusShipped) {
			return shared.InvalidTransition("transfer "+t.TransferNumber, t.Status, transfer.TransferStatusShipped)
		}

		manifest := make([]transfer.ShipmentLine, 0, len(t.Items))
		for _, item := range t.Items {
			lines, err := repos.LineRepo().FindByBranchAndProduct(ctx, t.SourceBranchID, item.ProductID, item.Ledger)
			if err != nil {
				return err
			}
			allocation := s.allocator.Allocate(lines, item.Quantity)
			if !allocation.FullyFulfilled() {
				return shared.InsufficientStock(labels.of(item.ProductID), item.Quantity, allocation.Allocated)
			}

			for _, a := range allocation.Allocations {
				if _, err := s.ledger.Deduct(ctx, repos, appinventory.StockOut{
					BranchID:      t.SourceBranchID,
					ProductID:     item.ProductID,
					BatchID:       a.BatchID,
					Ledger:        item.Ledger,
					Quantity:      a.Quantity,
					Subject:       labels.of(item.ProductID),
					MovementType:  inventory.MovementTransferOut,
					ReferenceType: inventory.ReferenceTransfer,
					ReferenceID:   t.ID,
					ActorID:       actorID,
				}); err != nil {
					return err
				}
				manifest = append(manifest, transfer.ShipmentLine{
					ItemID:    item.ID,
					ProductID: item.ProductID,
					BatchID:   a.BatchID,
					Ledger:    item.Ledger,
					Quantity:  a.Quantity,
					Cost:      a.Cost,
				})
			}
		}

		if err := t.Ship(manifest, actorID); err != nil {
			return err
		}
		return repos.TransferRepo().SaveWithLock(ctx, t)
	})
	if err != nil {
		logger.L(ctx, s.logger).Warn("Transfer shipment rejected", zap.String("transfer_id", id.String()), zap.Error(err))
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Transfer shipped",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_number", t.TransferNumber),
		zap.Int64("quantity", t.InTransitQuantity()),
		zap.Int("manifest_lines", len(t.Shipment)))
	s.publishDomainEvents(ctx, t)
	s.monitor.Check(ctx, t.SourceBranchID, transferredProducts(t)...)
	response := ToTransferResponse(t)
	return &response, nil
}

// Receive credits the target branch from the manifest: each line goes to the
// batch it was shipped from, carrying the source cost block. Only the target
// branch may receive.
func (s *TransferService) Receive(ctx context.Context, id uuid.UUID, req BranchActionRequest) (_ *TransferResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "receive", attribute.String("transfer_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	t, err := s.settle(ctx, id, req, func(t *transfer.StockTransfer) (uuid.UUID, error) {
		return t.TargetBranchID, t.Receive(req.BranchID, req.ActorID)
	})
	if err != nil {
		s.logger.Warn("Transfer receipt rejected", zap.String("transfer_id", id.String()), zap.Error(err))
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Transfer received",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_number", t.TransferNumber),
		zap.String("branch_id", t.TargetBranchID.String()))
	s.publishDomainEvents(ctx, t)
	response := ToTransferResponse(t)
	return &response, nil
}

// Reject refuses a shipped transfer at the target branch and returns the
// manifest quantities to the source branch's original lines.
func (s *TransferService) Reject(ctx context.Context, id uuid.UUID, req BranchActionRequest) (_ *TransferResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "reject", attribute.String("transfer_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	t, err := s.settle(ctx, id, req, func(t *transfer.StockTransfer) (uuid.UUID, error) {
		return t.SourceBranchID, t.Reject(req.BranchID, req.ActorID, req.Reason)
	})
	if err != nil {
		s.logger.Warn("Transfer rejection failed", zap.String("transfer_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Transfer rejected",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_number", t.TransferNumber),
		zap.String("reason", t.CancelReason))
	s.publishDomainEvents(ctx, t)
	response := ToTransferResponse(t)
	return &response, nil
}

// settle applies a state change to a shipped transfer and credits its manifest
// to the branch the transition returns, with TRANSFER_IN movements
func (s *TransferService) settle(
	ctx context.Context,
	id uuid.UUID,
	req BranchActionRequest,
	transition func(t *transfer.StockTransfer) (uuid.UUID, error),
) (*transfer.StockTransfer, error) {
	var t *transfer.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		t, err = repos.TransferRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		creditBranch, err := transition(t)
		if err != nil {
			return err
		}

		for _, line := range t.Shipment {
			if line.Cost == nil {
				return shared.RuleViolation("transfer %s manifest line for batch %s has no cost", t.TransferNumber, line.BatchID)
			}
			if _, err := s.ledger.Receive(ctx, repos, appinventory.StockIn{
				BranchID:      creditBranch,
				ProductID:     line.ProductID,
				BatchID:       line.BatchID,
				Quantity:      line.Quantity,
				Cost:          line.Cost,
				MovementType:  inventory.MovementTransferIn,
				ReferenceType: inventory.ReferenceTransfer,
				ReferenceID:   t.ID,
				Reason:        t.CancelReason,
				ActorID:       req.ActorID,
			}); err != nil {
				return err
			}
		}
		return repos.TransferRepo().SaveWithLock(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Cancel withdraws a pending transfer. Nothing has moved, so nothing is reversed.
func (s *TransferService) Cancel(ctx context.Context, id uuid.UUID, req CancelTransferRequest) (*TransferResponse, error) {
	var t *transfer.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		t, err = repos.TransferRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := t.Cancel(req.Reason); err != nil {
			return err
		}
		return repos.TransferRepo().SaveWithLock(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfer cancelled",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_number", t.TransferNumber),
		zap.String("actor_id", req.ActorID.String()))
	s.publishDomainEvents(ctx, t)
	response := ToTransferResponse(t)
	return &response, nil
}

// GetByID retrieves a transfer with its items and manifest
func (s *TransferService) GetByID(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	t, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(t)
	return &response, nil
}

// List lists transfers where the branch is source or target
func (s *TransferService) List(ctx context.Context, filter TransferListFilter) ([]TransferResponse, int64, error) {
	list, total, err := s.transfers.Find(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]TransferResponse, len(list))
	for i := range list {
		responses[i] = ToTransferResponse(&list[i])
	}
	return responses, total, nil
}

// ListInTransit lists shipped transfers touching branchID, or all branches
// when branchID is nil. Their quantities are in no branch's stock.
func (s *TransferService) ListInTransit(ctx context.Context, branchID *uuid.UUID) ([]TransferResponse, error) {
	filter := TransferListFilter{
		BranchID: branchID,
		Status:   transfer.TransferStatusShipped,
		PageSize: shared.MaxPageSize,
		OrderBy:  "shipped_at",
		OrderDir: "asc",
	}
	list, _, err := s.transfers.Find(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}
	responses := make([]TransferResponse, 0, len(list))
	for i := range list {
		t, err := s.transfers.FindByID(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, ToTransferResponse(t))
	}
	return responses, nil
}

type productLabels map[uuid.UUID]string

func (l productLabels) of(productID uuid.UUID) string {
	if label, ok := l[productID]; ok {
		return label
	}
	return "product " + productID.String()
}

// loadLabels names the transfer's products for stock errors. It reads the
// catalog before the shipping transaction opens.
func (s *TransferService) loadLabels(ctx context.Context, t *transfer.StockTransfer) productLabels {
	labels := make(productLabels, len(t.Items))
	for _, item := range t.Items {
		if product, err := s.products.FindByID(ctx, item.ProductID); err == nil {
			labels[item.ProductID] = product.Label()
		}
	}
	return labels
}

// publishDomainEvents publishes and clears the transfer's pending events
func (s *TransferService) publishDomainEvents(ctx context.Context, t *transfer.StockTransfer) {
	if err := shared.PublishPending(ctx, s.eventPublisher, t); err != nil {
		s.logger.Error("Failed to publish transfer events", zap.String("transfer_id", t.ID.String()), zap.Error(err))
	}
}

func transferredProducts(t *transfer.StockTransfer) []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Items))
	for i := range t.Items {
		ids[i] = t.Items[i].ProductID
	}
	return ids
}

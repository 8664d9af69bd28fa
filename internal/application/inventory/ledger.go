package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// StockIn describes stock entering one inventory line
type StockIn struct {
	BranchID      uuid.UUID
	ProductID     uuid.UUID
	BatchID       uuid.UUID
	Quantity      int64
	Location      string
	Cost          inventory.Costing
	MovementType  inventory.MovementType
	ReferenceType inventory.ReferenceType
	ReferenceID   uuid.UUID
	Reason        string
	ActorID       uuid.UUID
}

// StockOut describes stock leaving one inventory line
type StockOut struct {
	BranchID  uuid.UUID
	ProductID uuid.UUID
	BatchID   uuid.UUID
	Ledger    inventory.Ledger
	Quantity  int64
	// Subject names the product in an insufficient stock error
	Subject       string
	MovementType  inventory.MovementType
	ReferenceType inventory.ReferenceType
	ReferenceID   uuid.UUID
	Reason        string
	ActorID       uuid.UUID
}

// Ledger applies quantity changes to inventory lines. Each call updates the
// line, the batch total and the movement log through the same
// TransactionalRepositories, so it must run inside a TransactionScope.
type Ledger struct{}

// NewLedger creates a new Ledger
func NewLedger() *Ledger {
	return &Ledger{}
}

// Receive adds stock to the line keyed by (branch, product, batch, cost ledger).
// A missing line is created with in.Cost; an existing line keeps its cost block.
func (l *Ledger) Receive(ctx context.Context, repos TransactionalRepositories, in StockIn) (*inventory.StockMovement, error) {
	if in.Quantity <= 0 {
		return nil, shared.InvalidInput("receive quantity must be positive")
	}
	if in.Cost == nil {
		return nil, shared.InvalidInput("cost block is required")
	}
	if !in.MovementType.IsIncrease() {
		return nil, shared.InvalidInput("movement type %s does not add stock", in.MovementType)
	}

	movement, err := inventory.NewStockMovement(inventory.MovementInput{
		BranchID:      in.BranchID,
		ProductID:     in.ProductID,
		BatchID:       in.BatchID,
		Ledger:        in.Cost.Ledger(),
		MovementType:  in.MovementType,
		Quantity:      in.Quantity,
		UnitCost:      in.Cost.UnitCost(),
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		ActorID:       in.ActorID,
	})
	if err != nil {
		return nil, err
	}
	line, err := inventory.NewInventoryLine(in.BranchID, in.ProductID, in.BatchID, in.Quantity, in.Location, in.Cost)
	if err != nil {
		return nil, err
	}

	if err := repos.LineRepo().Increment(ctx, line); err != nil {
		return nil, err
	}
	if err := repos.BatchRepo().AdjustQuantity(ctx, in.BatchID, in.Quantity); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// Deduct removes stock from one line with a conditional decrement. A line that
// is missing or short fails with an insufficient stock error naming out.Subject
// and nothing is written.
func (l *Ledger) Deduct(ctx context.Context, repos TransactionalRepositories, out StockOut) (*inventory.StockMovement, error) {
	if out.Quantity <= 0 {
		return nil, shared.InvalidInput("deduct quantity must be positive")
	}
	if !out.Ledger.IsValid() {
		return nil, shared.InvalidInput("invalid ledger %q", out.Ledger)
	}
	if out.MovementType.IsIncrease() {
		return nil, shared.InvalidInput("movement type %s does not remove stock", out.MovementType)
	}
	subject := out.Subject
	if subject == "" {
		subject = "product " + out.ProductID.String()
	}

	lines := repos.LineRepo()
	ok, err := lines.Decrement(ctx, out.BranchID, out.ProductID, out.BatchID, out.Ledger, out.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		var available int64
		if line, findErr := lines.FindByKey(ctx, out.BranchID, out.ProductID, out.BatchID, out.Ledger); findErr == nil {
			available = line.Quantity
		}
		return nil, shared.InsufficientStock(subject, out.Quantity, available)
	}

	line, err := lines.FindByKey(ctx, out.BranchID, out.ProductID, out.BatchID, out.Ledger)
	if err != nil {
		return nil, err
	}
	if err := repos.BatchRepo().AdjustQuantity(ctx, out.BatchID, -out.Quantity); err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(inventory.MovementInput{
		BranchID:      out.BranchID,
		ProductID:     out.ProductID,
		BatchID:       out.BatchID,
		Ledger:        out.Ledger,
		MovementType:  out.MovementType,
		Quantity:      out.Quantity,
		UnitCost:      line.Cost.UnitCost(),
		ReferenceType: out.ReferenceType,
		ReferenceID:   out.ReferenceID,
		Reason:        out.Reason,
		ActorID:       out.ActorID,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// CostingFor builds the cost block for a receipt of product at unitCost.
// VAT-exempt products get a NonVatCost priced from the catalog selling price,
// or unitCost * markup when the catalog has none.
func CostingFor(product *catalog.Product, unitCost, markup decimal.Decimal) (inventory.Costing, error) {
	if product.IsVatExempt {
		return inventory.NewNonVatCost(unitCost, product.SellingPrice, markup)
	}
	return inventory.NewVatCost(unitCost, product.VatRate)
}

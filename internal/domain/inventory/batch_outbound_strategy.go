package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// BatchOutboundStrategyType defines how stock rows are chosen when stock leaves a branch
type BatchOutboundStrategyType string

const (
	// BatchOutboundStrategyTypeFEFO picks the earliest-expiring batch that can cover the whole quantity (sales)
	BatchOutboundStrategyTypeFEFO BatchOutboundStrategyType = "FEFO"
	// BatchOutboundStrategyTypeOldestRow consumes rows in creation order, spanning rows (transfers)
	BatchOutboundStrategyTypeOldestRow BatchOutboundStrategyType = "OLDEST_ROW"
)

// IsValid checks if the strategy type is valid
func (t BatchOutboundStrategyType) IsValid() bool {
	return t == BatchOutboundStrategyTypeFEFO || t == BatchOutboundStrategyTypeOldestRow
}

// StockCandidate is an inventory line together with the batch it holds.
type StockCandidate struct {
	Line  InventoryLine
	Batch Batch
}

// BatchAllocation is the quantity to take from one inventory line
type BatchAllocation struct {
	LineID   uuid.UUID
	BatchID  uuid.UUID
	Quantity int64
	Cost     Costing
}

// AllocationResult lists the rows to consume and what could not be covered
type AllocationResult struct {
	Allocations []BatchAllocation
	Allocated   int64
	Shortfall   int64
}

// FullyFulfilled reports whether the requested quantity was covered
func (r *AllocationResult) FullyFulfilled() bool {
	return r.Shortfall == 0
}

// FEFOSelector picks a single batch for a sale line.
type FEFOSelector struct {
	// AllowExpired lets expired batches be picked. Off by default.
	AllowExpired bool
}

// Select returns the candidate whose batch expires first among the sellable
// batches holding at least quantity at the branch. Ties on expiry go to the
// batch created first. ok is false when no single batch can cover the line.
func (s FEFOSelector) Select(candidates []StockCandidate, quantity int64, asOf time.Time) (StockCandidate, bool) {
	eligible := make([]StockCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Line.Quantity < quantity || !c.Batch.IsActive {
			continue
		}
		if !s.AllowExpired && c.Batch.IsExpired(asOf) {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return StockCandidate{}, false
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].Batch, eligible[j].Batch
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return eligible[0], true
}

// OldestRowAllocator spreads a quantity over inventory lines in row creation
// order. It orders by when the line was created at the branch, not by expiry.
type OldestRowAllocator struct{}

// Allocate consumes lines oldest-created first until quantity is covered
func (OldestRowAllocator) Allocate(lines []InventoryLine, quantity int64) *AllocationResult {
	sorted := make([]InventoryLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			sorted = append(sorted, l)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	result := &AllocationResult{Allocations: make([]BatchAllocation, 0)}
	remaining := quantity
	for _, l := range sorted {
		if remaining == 0 {
			break
		}
		take := l.Quantity
		if take > remaining {
			take = remaining
		}
		result.Allocations = append(result.Allocations, BatchAllocation{
			LineID:   l.ID,
			BatchID:  l.BatchID,
			Quantity: take,
			Cost:     l.Cost,
		})
		result.Allocated += take
		remaining -= take
	}
	result.Shortfall = remaining
	return result
}

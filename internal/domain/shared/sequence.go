package shared

import (
	"context"
	"fmt"
	"time"
)

// Document number prefixes.
const (
	PrefixInvoice        = "INV"
	PrefixTransfer       = "TRF"
	PrefixOemOrder       = "OEM"
	PrefixGoodsReceiving = "GR"
)

// SequenceGenerator issues collision-free document numbers scoped by (prefix, scope, day).
// Implementations must increment atomically at the storage layer and must run
// inside the caller's transaction so a rolled back document does not burn a number.
type SequenceGenerator interface {
	Next(ctx context.Context, prefix, scope string, day time.Time) (string, error)
}

// FormatDocumentNumber renders {prefix}-{scope}-{YYYYMMDD}-{seq:04d}.
func FormatDocumentNumber(prefix, scope string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%s-%04d", prefix, scope, day.Format("20060102"), seq)
}

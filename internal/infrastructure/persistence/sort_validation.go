package persistence

import (
	"strings"

	"github.com/thaipharm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes orderDir to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted and defaultField otherwise.
// Column names reach ORDER BY verbatim, so nothing outside allowedFields may pass.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// sortable whitelists columns plus the audit columns every table carries
func sortable(columns ...string) map[string]bool {
	fields := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, c := range columns {
		fields[c] = true
	}
	return fields
}

var (
	BatchSortFields         = sortable("batch_number", "expiry_date", "quantity")
	InventoryLineSortFields = sortable("product_id", "quantity", "ledger")
	StockMovementSortFields = sortable("movement_type", "quantity")
	SaleSortFields          = sortable("invoice_number", "total_amount", "status")
	TransferSortFields      = sortable("transfer_number", "status", "shipped_at")
	OemOrderSortFields      = sortable("order_number", "status", "total_amount")
)

// applyPaging orders and pages query from filter, accepting only whitelisted sort fields
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "")
	if field == "" {
		query = query.Order(defaultOrder)
	} else {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

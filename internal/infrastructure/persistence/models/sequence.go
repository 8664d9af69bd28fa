package models

import "time"

// DocumentSequenceModel is the counter row behind document numbers.
// Day is stored as YYYYMMDD so the key does not depend on the session time zone.
type DocumentSequenceModel struct {
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	Scope     string    `gorm:"type:varchar(20);primaryKey"`
	Day       string    `gorm:"type:char(8);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

// AllModels lists every model owned by this service, in dependency order.
// Tests use it with AutoMigrate; production schemas come from migrations/.
func AllModels() []any {
	return []any{
		&ProductModel{},
		&BranchModel{},
		&SupplierModel{},
		&BatchModel{},
		&InventoryLineModel{},
		&StockMovementModel{},
		&SaleModel{},
		&SaleItemModel{},
		&PaymentModel{},
		&StockTransferModel{},
		&StockTransferItemModel{},
		&TransferShipmentLineModel{},
		&OemOrderModel{},
		&OemOrderItemModel{},
		&GoodsReceivingModel{},
		&GoodsReceivingItemModel{},
		&DocumentSequenceModel{},
	}
}

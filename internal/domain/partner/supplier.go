package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
	SupplierStatusBlocked  SupplierStatus = "BLOCKED"
)

// SupplierType represents the type of supplier
type SupplierType string

const (
	SupplierTypeOEM          SupplierType = "OEM"          // Produces private-label stock against production orders
	SupplierTypeManufacturer SupplierType = "MANUFACTURER" // Direct manufacturer
	SupplierTypeDistributor  SupplierType = "DISTRIBUTOR"  // Distributor
	SupplierTypeWholesaler   SupplierType = "WHOLESALER"   // Wholesaler
)

// IsValid checks if the supplier type is valid
func (t SupplierType) IsValid() bool {
	switch t {
	case SupplierTypeOEM, SupplierTypeManufacturer, SupplierTypeDistributor, SupplierTypeWholesaler:
		return true
	}
	return false
}

// Supplier is supplier master data as read by the inventory core
type Supplier struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	Code           string
	Name           string
	Type           SupplierType
	Status         SupplierStatus
	TaxID          string
}

// NewSupplier creates a new active supplier
func NewSupplier(organizationID uuid.UUID, code, name string, supplierType SupplierType) (*Supplier, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.InvalidInput("supplier code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.InvalidInput("supplier name is required")
	}
	if !supplierType.IsValid() {
		return nil, shared.InvalidInput("invalid supplier type %q", supplierType)
	}
	return &Supplier{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		Code:           code,
		Name:           strings.TrimSpace(name),
		Type:           supplierType,
		Status:         SupplierStatusActive,
	}, nil
}

// IsOEM reports whether OEM production orders may be placed with the supplier
func (s *Supplier) IsOEM() bool {
	return s.Type == SupplierTypeOEM
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// SupplierReader reads supplier master data
type SupplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
}

// SupplierRepository is the master-data write side, used to seed and sync suppliers
type SupplierRepository interface {
	SupplierReader
	Save(ctx context.Context, supplier *Supplier) error
}

package models

import (
	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/partner"
)

// BranchModel is the persistence model for the Branch entity.
type BranchModel struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code           string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name           string    `gorm:"type:varchar(200);not null"`
	IsActive       bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch entity.
func (m *BranchModel) ToDomain() *partner.Branch {
	return &partner.Branch{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrganizationID: m.OrganizationID,
		Code:           m.Code,
		Name:           m.Name,
		IsActive:       m.IsActive,
	}
}

// BranchModelFromDomain creates a new persistence model from a domain Branch entity.
func BranchModelFromDomain(b *partner.Branch) *BranchModel {
	m := &BranchModel{
		OrganizationID: b.OrganizationID,
		Code:           b.Code,
		Name:           b.Name,
		IsActive:       b.IsActive,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// SupplierModel is the persistence model for the Supplier entity.
type SupplierModel struct {
	BaseModel
	OrganizationID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Code           string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string                 `gorm:"type:varchar(200);not null"`
	Type           partner.SupplierType   `gorm:"type:varchar(20);not null"`
	Status         partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	TaxID          string                 `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrganizationID: m.OrganizationID,
		Code:           m.Code,
		Name:           m.Name,
		Type:           m.Type,
		Status:         m.Status,
		TaxID:          m.TaxID,
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		OrganizationID: s.OrganizationID,
		Code:           s.Code,
		Name:           s.Name,
		Type:           s.Type,
		Status:         s.Status,
		TaxID:          s.TaxID,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

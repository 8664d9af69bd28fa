package partner

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// Branch is a pharmacy outlet holding its own stock. Branch data is owned by the
// identity/branch service; the inventory core only reads it.
type Branch struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	Code           string
	Name           string
	IsActive       bool
}

var branchCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_]{0,19}$`)

// NewBranch creates a new active branch
func NewBranch(organizationID uuid.UUID, code, name string) (*Branch, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !branchCodePattern.MatchString(code) {
		return nil, shared.InvalidInput("branch code must be 1-20 upper-case letters, digits or underscores")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.InvalidInput("branch name is required")
	}
	return &Branch{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		Code:           code,
		Name:           strings.TrimSpace(name),
		IsActive:       true,
	}, nil
}

// BranchReader reads branches from the identity/branch service
type BranchReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
}

// BranchRepository is the branch write side, used to seed and sync branches
type BranchRepository interface {
	BranchReader
	Save(ctx context.Context, branch *Branch) error
}

package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceGenerator issues document numbers from counter rows in
// document_sequences. The increment is a single upsert, so two transactions
// asking for the same (prefix, scope, day) serialize on the row lock and never
// receive the same value.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a sequence generator bound to db, which
// should be the caller's transaction handle.
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next increments the counter for (prefix, scope, day) and formats the result
func (g *GormSequenceGenerator) Next(ctx context.Context, prefix, scope string, day time.Time) (string, error) {
	prefix = strings.TrimSpace(prefix)
	scope = strings.TrimSpace(scope)
	if prefix == "" || scope == "" {
		return "", shared.InvalidInput("sequence prefix and scope are required")
	}
	dayKey := day.Format("20060102")
	now := time.Now()

	row := models.DocumentSequenceModel{
		Prefix:    prefix,
		Scope:     scope,
		Day:       dayKey,
		LastValue: 1,
		UpdatedAt: now,
	}
	if err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "prefix"}, {Name: "scope"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_value": gorm.Expr("document_sequences.last_value + 1"),
				"updated_at": now,
			}),
		}).
		Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to increment %s sequence: %w", prefix, err)
	}

	var value int64
	if err := g.db.WithContext(ctx).
		Model(&models.DocumentSequenceModel{}).
		Select("last_value").
		Where("prefix = ? AND scope = ? AND day = ?", prefix, scope, dayKey).
		Scan(&value).Error; err != nil {
		return "", fmt.Errorf("failed to read %s sequence: %w", prefix, err)
	}
	return shared.FormatDocumentNumber(prefix, scope, day, value), nil
}

// Ensure GormSequenceGenerator implements SequenceGenerator
var _ shared.SequenceGenerator = (*GormSequenceGenerator)(nil)

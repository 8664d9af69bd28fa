package inventory

import (
	"context"
	"time"

	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BatchExpiryService retires batches whose expiry date has passed so that
// FEFO selection no longer offers them. Stock on their lines is left for a
// pharmacist to write off with an EXPIRED adjustment.
type BatchExpiryService struct {
	batches  inventory.BatchRepository
	eventBus shared.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewBatchExpiryService creates a new BatchExpiryService
func NewBatchExpiryService(
	batches inventory.BatchRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *BatchExpiryService {
	return &BatchExpiryService{
		batches:  batches,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventBus sets the event bus for publishing events.
// This is useful when the event bus is not available at construction time
func (s *BatchExpiryService) SetEventBus(eventBus shared.EventPublisher) {
	s.eventBus = eventBus
}

// WithClock replaces the clock used to decide expiry
func (s *BatchExpiryService) WithClock(now func() time.Time) *BatchExpiryService {
	s.now = now
	return s
}

// ExpiryStats contains statistics about one expiry run
type ExpiryStats struct {
	Deactivated int64     `json:"deactivated"`
	ProcessedAt time.Time `json:"processed_at"`
}

// DeactivateExpired marks every active batch past its expiry date inactive
// and publishes BatchesExpired when any were found
func (s *BatchExpiryService) DeactivateExpired(ctx context.Context) (*ExpiryStats, error) {
	stats := &ExpiryStats{
		ProcessedAt: s.now(),
	}

	count, err := s.batches.DeactivateExpired(ctx, stats.ProcessedAt)
	if err != nil {
		s.logger.Error("Failed to deactivate expired batches", zap.Error(err))
		return nil, err
	}
	stats.Deactivated = count
	if count == 0 {
		s.logger.Debug("No expired batches found")
		return stats, nil
	}

	s.logger.Info("Deactivated expired batches",
		zap.Int64("count", count),
		zap.Time("as_of", stats.ProcessedAt),
	)

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, inventory.NewBatchesExpiredEvent(count)); err != nil {
			s.logger.Warn("Failed to publish BatchesExpired event", zap.Error(err))
		}
	}
	return stats, nil
}

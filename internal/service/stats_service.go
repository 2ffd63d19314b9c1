package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/models"
	"github.com/campus-hub/scheduling-api/internal/repository"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
)

const statsCacheKey = "schedule:stats"

type slotCounter interface {
	CountByStatus(ctx context.Context) (*repository.SlotStatusCounts, error)
}

type classCounter interface {
	CountByAssignment(ctx context.Context) (*repository.ClassStatusCounts, error)
}

// StatsService aggregates assignment progress, serving cached results when
// the cache holds a fresh copy. Writers invalidate the key on every
// assignment change.
type StatsService struct {
	slots   slotCounter
	classes classCounter
	cache   *CacheService
	logger  *zap.Logger
}

// NewStatsService instantiates StatsService.
func NewStatsService(slots slotCounter, classes classCounter, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{slots: slots, classes: classes, cache: cache, logger: logger}
}

// Stats returns aggregate counters for the assignment workflow.
func (s *StatsService) Stats(ctx context.Context) (*models.ScheduleStats, error) {
	var cached models.ScheduleStats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	slotCounts, err := s.slots.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count slots")
	}
	classCounts, err := s.classes.CountByAssignment(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}

	stats := &models.ScheduleStats{
		TotalClasses:    classCounts.Total,
		AssignedClasses: classCounts.Assigned,
		PendingClasses:  classCounts.Total - classCounts.Assigned,
		TotalSlots:      slotCounts.Total,
		PendingSlots:    slotCounts.Pending,
		AssignedSlots:   slotCounts.Assigned,
	}
	if stats.TotalSlots > 0 {
		stats.AssignmentRate = float64(stats.AssignedSlots) / float64(stats.TotalSlots)
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, 0); err != nil {
		s.logger.Warn("stats cache store failed", zap.Error(err))
	}

	return stats, nil
}

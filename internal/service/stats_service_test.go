package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/repository"
)

type fakeSlotCounter struct {
	counts repository.SlotStatusCounts
	calls  int
}

func (f *fakeSlotCounter) CountByStatus(_ context.Context) (*repository.SlotStatusCounts, error) {
	f.calls++
	return &f.counts, nil
}

type fakeClassCounter struct {
	counts repository.ClassStatusCounts
	calls  int
}

func (f *fakeClassCounter) CountByAssignment(_ context.Context) (*repository.ClassStatusCounts, error) {
	f.calls++
	return &f.counts, nil
}

func TestStatsComputesAssignmentRate(t *testing.T) {
	slots := &fakeSlotCounter{counts: repository.SlotStatusCounts{Total: 10, Pending: 4, Assigned: 6}}
	classes := &fakeClassCounter{counts: repository.ClassStatusCounts{Total: 3, Assigned: 1}}

	svc := NewStatsService(slots, classes, nil, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalSlots)
	assert.Equal(t, 4, stats.PendingSlots)
	assert.Equal(t, 6, stats.AssignedSlots)
	assert.Equal(t, 3, stats.TotalClasses)
	assert.Equal(t, 1, stats.AssignedClasses)
	assert.Equal(t, 2, stats.PendingClasses)
	assert.InDelta(t, 0.6, stats.AssignmentRate, 1e-9)
}

func TestStatsZeroSlots(t *testing.T) {
	svc := NewStatsService(&fakeSlotCounter{}, &fakeClassCounter{}, nil, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.AssignmentRate)
}

func TestStatsServedFromCache(t *testing.T) {
	slots := &fakeSlotCounter{counts: repository.SlotStatusCounts{Total: 10, Pending: 4, Assigned: 6}}
	classes := &fakeClassCounter{counts: repository.ClassStatusCounts{Total: 3, Assigned: 1}}
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	svc := NewStatsService(slots, classes, cache, zap.NewNop())

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, slots.calls)
	assert.Equal(t, 1, classes.calls)

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, slots.calls)
	assert.Equal(t, 1, classes.calls)
	assert.Equal(t, first, second)
}

func TestStatsRecomputesAfterInvalidation(t *testing.T) {
	slots := &fakeSlotCounter{counts: repository.SlotStatusCounts{Total: 10, Pending: 4, Assigned: 6}}
	classes := &fakeClassCounter{counts: repository.ClassStatusCounts{Total: 3, Assigned: 1}}
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	svc := NewStatsService(slots, classes, cache, zap.NewNop())

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	slots.counts.Assigned = 10
	slots.counts.Pending = 0
	require.NoError(t, cache.Invalidate(context.Background(), statsCacheKey))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, slots.calls)
	assert.InDelta(t, 1.0, stats.AssignmentRate, 1e-9)
}

/*
Copyright 2025 Legendtrack Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package legendtrack

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

func unprocessedConfig(id string, in time.Duration) *model.SeasonConfig {
	return &model.SeasonConfig{
		SeasonConfigID: id,
		ScheduledAt:    time.Now().Add(in),
		IsProcessed:    false,
	}
}

func TestScheduleHarvestIdempotent(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	mockDS.On("GetSeasonConfig", ctx, "cfg-1").Return(unprocessedConfig("cfg-1", time.Hour), nil)

	require.NoError(t, svc.ScheduleHarvest(ctx, "cfg-1"))
	require.NoError(t, svc.ScheduleHarvest(ctx, "cfg-1"))

	exists, err := svc.Queue().PendingHarvestExists("cfg-1")
	require.NoError(t, err)
	assert.True(t, exists)

	tasks, err := svc.Queue().Inspector.ListScheduledTasks("new:harvest")
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "double scheduling must not produce a second task")
}

func TestScheduleHarvestSkipsProcessed(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	cfg := unprocessedConfig("cfg-done", time.Hour)
	cfg.IsProcessed = true
	mockDS.On("GetSeasonConfig", ctx, "cfg-done").Return(cfg, nil)

	require.NoError(t, svc.ScheduleHarvest(ctx, "cfg-done"))

	exists, err := svc.Queue().PendingHarvestExists("cfg-done")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestScheduleHarvestSkipsPastBoundary(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	mockDS.On("GetSeasonConfig", ctx, "cfg-old").Return(unprocessedConfig("cfg-old", -time.Hour), nil)

	require.NoError(t, svc.ScheduleHarvest(ctx, "cfg-old"))

	exists, err := svc.Queue().PendingHarvestExists("cfg-old")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestScheduleHarvestSkipsMissingConfig(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	notFound := apierror.NewAPIError(apierror.ErrNotFound, "Season config with ID 'cfg-x' not found", nil)
	mockDS.On("GetSeasonConfig", ctx, "cfg-x").Return(nil, notFound)

	// A missing configuration is a silent no-op, not an error.
	require.NoError(t, svc.ScheduleHarvest(ctx, "cfg-x"))

	exists, err := svc.Queue().PendingHarvestExists("cfg-x")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReconcileSchedulesRepairsEmptyQueue(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	var configs []model.SeasonConfig
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("cfg-%d", i)
		cfg := unprocessedConfig(id, time.Duration(i)*time.Hour)
		configs = append(configs, *cfg)
		mockDS.On("GetSeasonConfig", ctx, id).Return(cfg, nil)
	}
	mockDS.On("GetUnprocessedSeasonConfigs", ctx).Return(configs, nil)

	// Simulated crash: configs exist, queue is empty.
	scheduled, err := svc.ReconcileSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, scheduled)

	tasks, err := svc.Queue().Inspector.ListScheduledTasks("new:harvest")
	require.NoError(t, err)
	assert.Len(t, tasks, 3, "one task per unprocessed configuration")

	// A second pass must not duplicate anything.
	scheduled, err = svc.ReconcileSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, scheduled)

	tasks, err = svc.Queue().Inspector.ListScheduledTasks("new:harvest")
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestReconcileSchedulesContinuesPastFailures(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	bad := unprocessedConfig("cfg-bad", time.Hour)
	good := unprocessedConfig("cfg-good", 2*time.Hour)
	mockDS.On("GetUnprocessedSeasonConfigs", ctx).Return([]model.SeasonConfig{*bad, *good}, nil)
	mockDS.On("GetSeasonConfig", ctx, "cfg-bad").Return(nil, apierror.NewAPIError(apierror.ErrInternalServer, "store unreachable", nil))
	mockDS.On("GetSeasonConfig", ctx, "cfg-good").Return(good, nil)

	scheduled, err := svc.ReconcileSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, scheduled)

	exists, err := svc.Queue().PendingHarvestExists("cfg-good")
	require.NoError(t, err)
	assert.True(t, exists, "a failing configuration must not abort the rest")
}

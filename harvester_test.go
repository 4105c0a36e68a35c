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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

func intPtr(i int) *int { return &i }

// TestRunHarvestScenario covers the full pipeline: two clans, one roster
// fetch failing entirely, one member with season data, one without.
func TestRunHarvestScenario(t *testing.T) {
	svc, mockDS, mockGW, _ := newTestService(t)
	ctx := context.Background()

	cfg := unprocessedConfig("cfg-1", time.Hour)
	mockDS.On("GetSeasonConfig", ctx, "cfg-1").Return(cfg, nil)
	mockDS.On("GetRegisteredClans", ctx).Return([]model.Clan{
		{ClanTag: "#AAA", Name: "Alpha"},
		{ClanTag: "#BBB", Name: "Bravo"},
	}, nil)

	mockGW.On("GetClanMembers", ctx, "#AAA").Return([]model.ClanMember{
		{Tag: "#M1", Name: "m1"},
		{Tag: "#M2", Name: "m2"},
	}, nil)
	mockGW.On("GetClanMembers", ctx, "#BBB").Return(nil, errors.New("connection refused"))

	mockGW.On("GetPlayer", ctx, "#M1").Return(&model.Player{
		Tag:  "#M1",
		Name: "m1",
		Clan: &model.PlayerClan{Tag: "#AAA", Name: "Alpha"},
		LegendStatistics: &model.LegendStatistics{
			PreviousSeason: &model.SeasonResult{ID: "2026-08", Rank: intPtr(5), Trophies: 34000},
		},
	}, nil)
	mockGW.On("GetPlayer", ctx, "#M2").Return(&model.Player{Tag: "#M2", Name: "m2"}, nil)

	mockDS.On("TouchLivePlayer", ctx, "#M1", "m1").Return(nil)
	mockDS.On("TouchLivePlayer", ctx, "#M2", "m2").Return(nil)
	mockDS.On("UpsertPlayerSeasonRecord", ctx, mock.MatchedBy(func(rec model.PlayerSeasonRecord) bool {
		return rec.PlayerTag == "#M1" &&
			rec.SeasonID == "2026-08" &&
			rec.SeasonConfigID == "cfg-1" &&
			rec.Rank != nil && *rec.Rank == 5 &&
			rec.Trophies == 34000
	})).Return(nil)
	mockDS.On("BulkResetLiveTrophies", ctx, 5000).Return(int64(7), nil)
	mockDS.On("GetAllLivePlayers", ctx).Return([]model.LivePlayer{
		{PlayerTag: "#M1", PlayerName: "m1", Trophies: 5000},
		{PlayerTag: "#M2", PlayerName: "m2", Trophies: 5000},
	}, nil)
	mockDS.On("MarkSeasonConfigProcessed", ctx, "cfg-1").Return(nil)

	result, err := svc.RunHarvest(ctx, "cfg-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsSaved)
	assert.Equal(t, int64(7), result.ResetCount)
	assert.False(t, result.AlreadyProcessed)
	require.Len(t, result.SkippedClans, 1)
	assert.Equal(t, "#BBB", result.SkippedClans[0].Tag)
	assert.Empty(t, result.SkippedPlayers)

	// The freshly reset snapshots are mirrored into the cache.
	var snap model.PlayerSnapshot
	require.NoError(t, svc.cache.Get(ctx, model.SnapshotKey("#M1"), &snap))
	assert.Equal(t, 5000, snap.Trophies)

	mockDS.AssertExpectations(t)
	mockGW.AssertExpectations(t)
}

func TestRunHarvestAlreadyProcessed(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	cfg := unprocessedConfig("cfg-done", time.Hour)
	cfg.IsProcessed = true
	mockDS.On("GetSeasonConfig", ctx, "cfg-done").Return(cfg, nil)

	result, err := svc.RunHarvest(ctx, "cfg-done")
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Zero(t, result.RecordsSaved)

	// Redelivery of an already committed harvest must not reset anything.
	mockDS.AssertNotCalled(t, "BulkResetLiveTrophies", mock.Anything, mock.Anything)
	mockDS.AssertNotCalled(t, "MarkSeasonConfigProcessed", mock.Anything, mock.Anything)
}

func TestRunHarvestMissingConfig(t *testing.T) {
	svc, mockDS, _, _ := newTestService(t)
	ctx := context.Background()

	notFound := apierror.NewAPIError(apierror.ErrNotFound, "Season config with ID 'cfg-x' not found", nil)
	mockDS.On("GetSeasonConfig", ctx, "cfg-x").Return(nil, notFound)

	result, err := svc.RunHarvest(ctx, "cfg-x")
	require.Error(t, err)
	assert.True(t, apierror.IsNotFound(err))
	assert.Nil(t, result)
}

// TestRunHarvestUnconditionalReset verifies the bulk reset and the processed
// flag commit even when the upstream is fully unavailable and nothing is
// saved.
func TestRunHarvestUnconditionalReset(t *testing.T) {
	svc, mockDS, mockGW, _ := newTestService(t)
	ctx := context.Background()

	cfg := unprocessedConfig("cfg-2", time.Hour)
	mockDS.On("GetSeasonConfig", ctx, "cfg-2").Return(cfg, nil)
	mockDS.On("GetRegisteredClans", ctx).Return([]model.Clan{{ClanTag: "#AAA"}}, nil)
	mockGW.On("GetClanMembers", ctx, "#AAA").Return(nil, errors.New("upstream down"))
	mockDS.On("BulkResetLiveTrophies", ctx, 5000).Return(int64(12), nil)
	mockDS.On("GetAllLivePlayers", ctx).Return([]model.LivePlayer{}, nil)
	mockDS.On("MarkSeasonConfigProcessed", ctx, "cfg-2").Return(nil)

	result, err := svc.RunHarvest(ctx, "cfg-2")
	require.NoError(t, err)
	assert.Zero(t, result.RecordsSaved)
	assert.Equal(t, int64(12), result.ResetCount)

	mockDS.AssertCalled(t, "BulkResetLiveTrophies", ctx, 5000)
	mockDS.AssertCalled(t, "MarkSeasonConfigProcessed", ctx, "cfg-2")
}

// TestRunHarvestMemberFailureIsolated verifies one member's fetch failure is
// invisible to its siblings in the same clan.
func TestRunHarvestMemberFailureIsolated(t *testing.T) {
	svc, mockDS, mockGW, _ := newTestService(t)
	ctx := context.Background()

	cfg := unprocessedConfig("cfg-3", time.Hour)
	mockDS.On("GetSeasonConfig", ctx, "cfg-3").Return(cfg, nil)
	mockDS.On("GetRegisteredClans", ctx).Return([]model.Clan{{ClanTag: "#AAA"}}, nil)
	mockGW.On("GetClanMembers", ctx, "#AAA").Return([]model.ClanMember{
		{Tag: "#M1", Name: "m1"},
		{Tag: "#M2", Name: "m2"},
	}, nil)
	mockGW.On("GetPlayer", ctx, "#M1").Return(nil, errors.New("timeout"))
	mockGW.On("GetPlayer", ctx, "#M2").Return(&model.Player{
		Tag:  "#M2",
		Name: "m2",
		LegendStatistics: &model.LegendStatistics{
			PreviousSeason: &model.SeasonResult{ID: "2026-08", Trophies: 31000},
		},
	}, nil)
	mockDS.On("TouchLivePlayer", ctx, "#M2", "m2").Return(nil)
	mockDS.On("UpsertPlayerSeasonRecord", ctx, mock.Anything).Return(nil)
	mockDS.On("BulkResetLiveTrophies", ctx, 5000).Return(int64(2), nil)
	mockDS.On("GetAllLivePlayers", ctx).Return([]model.LivePlayer{}, nil)
	mockDS.On("MarkSeasonConfigProcessed", ctx, "cfg-3").Return(nil)

	result, err := svc.RunHarvest(ctx, "cfg-3")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsSaved)
	require.Len(t, result.SkippedPlayers, 1)
	assert.Equal(t, "#M1", result.SkippedPlayers[0].Tag)
}

// TestRunHarvestRerunOverwrites simulates queue redelivery before the
// processed flag was committed: the second run upserts the same keys again
// and completes without error.
func TestRunHarvestRerunOverwrites(t *testing.T) {
	svc, mockDS, mockGW, _ := newTestService(t)
	ctx := context.Background()

	cfg := unprocessedConfig("cfg-4", time.Hour)
	mockDS.On("GetSeasonConfig", ctx, "cfg-4").Return(cfg, nil)
	mockDS.On("GetRegisteredClans", ctx).Return([]model.Clan{{ClanTag: "#AAA"}}, nil)
	mockGW.On("GetClanMembers", ctx, "#AAA").Return([]model.ClanMember{{Tag: "#M1", Name: "m1"}}, nil)
	mockGW.On("GetPlayer", ctx, "#M1").Return(&model.Player{
		Tag:  "#M1",
		Name: "m1",
		LegendStatistics: &model.LegendStatistics{
			PreviousSeason: &model.SeasonResult{ID: "2026-08", Rank: intPtr(9), Trophies: 32000},
		},
	}, nil)
	mockDS.On("TouchLivePlayer", ctx, "#M1", "m1").Return(nil)
	mockDS.On("UpsertPlayerSeasonRecord", ctx, mock.Anything).Return(nil)
	mockDS.On("BulkResetLiveTrophies", ctx, 5000).Return(int64(1), nil)
	mockDS.On("GetAllLivePlayers", ctx).Return([]model.LivePlayer{}, nil)
	mockDS.On("MarkSeasonConfigProcessed", ctx, "cfg-4").Return(nil)

	first, err := svc.RunHarvest(ctx, "cfg-4")
	require.NoError(t, err)
	second, err := svc.RunHarvest(ctx, "cfg-4")
	require.NoError(t, err)

	assert.Equal(t, first.RecordsSaved, second.RecordsSaved)
	// Two runs, two upserts on the same composite key; the store overwrites.
	mockDS.AssertNumberOfCalls(t, "UpsertPlayerSeasonRecord", 2)
}

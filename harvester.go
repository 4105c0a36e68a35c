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

	"github.com/sirupsen/logrus"

	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/model"
)

// RunHarvest executes the season harvest pipeline for a configuration:
// preserve every registered clan member's previous-season standing, reset all
// live trophy counts to the season baseline, refresh the cached snapshots and
// mark the configuration processed.
//
// A single fetch or write failing skips that clan, player or record and the
// pipeline continues. The bulk reset runs unconditionally, even when nothing
// was saved. Marking the configuration processed is the final write, so a
// crash before it only causes an idempotent re-run on redelivery.
func (l *Legendtrack) RunHarvest(ctx context.Context, configID string) (*model.HarvestResult, error) {
	ctx, span := tracer.Start(ctx, "Running season harvest")
	defer span.End()

	cfg, err := l.datasource.GetSeasonConfig(ctx, configID)
	if err != nil {
		// Includes not-found: nothing to unwind, surface to the caller.
		return nil, err
	}

	result := &model.HarvestResult{SeasonConfigID: cfg.SeasonConfigID}
	if cfg.IsProcessed {
		logrus.Infof("season config %s already processed, nothing to harvest", configID)
		result.AlreadyProcessed = true
		return result, nil
	}

	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	clans, err := l.datasource.GetRegisteredClans(ctx)
	if err != nil {
		return nil, err
	}

	for _, cl := range clans {
		l.harvestClan(ctx, cl, cfg, result)
	}

	resetCount, err := l.datasource.BulkResetLiveTrophies(ctx, conf.Harvest.ResetTrophies)
	if err != nil {
		return nil, err
	}
	result.ResetCount = resetCount

	l.refreshSnapshots(ctx, conf)

	if err := l.datasource.MarkSeasonConfigProcessed(ctx, configID); err != nil {
		return nil, err
	}

	logrus.Infof(" [*] Season harvest complete for %s: %d records saved, %d live rows reset",
		configID, result.RecordsSaved, result.ResetCount)
	return result, nil
}

// harvestClan walks one clan's roster. A failed or empty roster fetch skips
// the whole clan; one member's failure is invisible to its siblings.
func (l *Legendtrack) harvestClan(ctx context.Context, cl model.Clan, cfg *model.SeasonConfig, result *model.HarvestResult) {
	members, err := l.gateway.GetClanMembers(ctx, cl.ClanTag)
	if err != nil {
		logrus.Warnf("skipping clan %s: roster fetch failed: %v", cl.ClanTag, err)
		result.SkippedClans = append(result.SkippedClans, model.SkippedItem{Tag: cl.ClanTag, Reason: "roster fetch failed"})
		return
	}
	if len(members) == 0 {
		logrus.Warnf("skipping clan %s: empty roster", cl.ClanTag)
		result.SkippedClans = append(result.SkippedClans, model.SkippedItem{Tag: cl.ClanTag, Reason: "empty roster"})
		return
	}

	for _, member := range members {
		l.harvestMember(ctx, member, cl, cfg, result)
	}
}

func (l *Legendtrack) harvestMember(ctx context.Context, member model.ClanMember, cl model.Clan, cfg *model.SeasonConfig, result *model.HarvestResult) {
	player, err := l.gateway.GetPlayer(ctx, member.Tag)
	if err != nil {
		logrus.Warnf("skipping player %s: detail fetch failed: %v", member.Tag, err)
		result.SkippedPlayers = append(result.SkippedPlayers, model.SkippedItem{Tag: member.Tag, Reason: "detail fetch failed"})
		return
	}

	// Every observed player joins live tracking, season data or not. A failed
	// registration does not block the season record.
	if err := l.datasource.TouchLivePlayer(ctx, player.Tag, player.Name); err != nil {
		logrus.Warnf("failed to register live player %s: %v", player.Tag, err)
	}

	if !player.HasPreviousSeason() {
		return
	}

	clanTag := cl.ClanTag
	if player.Clan != nil && player.Clan.Tag != "" {
		clanTag = player.Clan.Tag
	}

	prev := player.LegendStatistics.PreviousSeason
	record := model.PlayerSeasonRecord{
		PlayerTag:      player.Tag,
		PlayerName:     player.Name,
		ClanTag:        clanTag,
		SeasonID:       prev.ID,
		SeasonConfigID: cfg.SeasonConfigID,
		Rank:           prev.Rank,
		Trophies:       prev.Trophies,
	}
	if err := l.datasource.UpsertPlayerSeasonRecord(ctx, record); err != nil {
		logrus.Warnf("failed to save season record for player %s: %v", player.Tag, err)
		result.SkippedPlayers = append(result.SkippedPlayers, model.SkippedItem{Tag: player.Tag, Reason: "season record upsert failed"})
		return
	}
	result.RecordsSaved++
}

// refreshSnapshots overwrites every cached player snapshot with the freshly
// reset baseline. Best-effort; cache failures never affect the harvest.
func (l *Legendtrack) refreshSnapshots(ctx context.Context, conf *config.Configuration) {
	players, err := l.datasource.GetAllLivePlayers(ctx)
	if err != nil {
		logrus.Errorf("snapshot refresh skipped: %v", err)
		return
	}

	for _, p := range players {
		if err := l.cache.Set(ctx, model.SnapshotKey(p.PlayerTag), p.Snapshot(), conf.SnapshotTTL()); err != nil {
			logrus.Warnf("failed to refresh snapshot for player %s: %v", p.PlayerTag, err)
		}
	}
}

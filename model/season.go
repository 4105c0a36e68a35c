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

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SeasonConfig is one administratively defined season boundary. Each config
// is harvested exactly once: IsProcessed flips false to true and never back.
type SeasonConfig struct {
	SeasonConfigID string    `json:"season_config_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	IsProcessed    bool      `json:"is_processed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PlayerSeasonRecord preserves a player's standing at a season boundary.
// Uniqueness is (PlayerTag, SeasonID, SeasonConfigID); re-running a harvest
// overwrites rather than duplicates.
type PlayerSeasonRecord struct {
	RecordID       string    `json:"record_id"`
	PlayerTag      string    `json:"player_tag"`
	PlayerName     string    `json:"player_name"`
	ClanTag        string    `json:"clan_tag"`
	SeasonID       string    `json:"season_id"`
	SeasonConfigID string    `json:"season_config_id"`
	Rank           *int      `json:"rank"`
	Trophies       int       `json:"trophies"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HarvestResult summarizes one pipeline execution.
type HarvestResult struct {
	SeasonConfigID   string        `json:"season_config_id"`
	RecordsSaved     int           `json:"records_saved"`
	ResetCount       int64         `json:"reset_count"`
	AlreadyProcessed bool          `json:"already_processed"`
	SkippedClans     []SkippedItem `json:"skipped_clans,omitempty"`
	SkippedPlayers   []SkippedItem `json:"skipped_players,omitempty"`
}

// SkippedItem records a clan or player that contributed nothing to a harvest,
// with the reason it was passed over.
type SkippedItem struct {
	Tag    string `json:"tag"`
	Reason string `json:"reason"`
}

func (s *SeasonConfig) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ScheduledAt, validation.Required, validation.By(futureInstant)),
	)
}

func futureInstant(value interface{}) error {
	t, ok := value.(time.Time)
	if !ok || t.IsZero() {
		return validation.NewError("validation_scheduled_at", "scheduled_at must be a valid timestamp")
	}
	if !t.After(time.Now()) {
		return validation.NewError("validation_scheduled_at", "scheduled_at must be in the future")
	}
	return nil
}

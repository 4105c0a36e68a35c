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

package database

import (
	"context"

	"github.com/hordestats/legendtrack/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	season // Interface for season configuration and season record operations
	player // Interface for live player tracking operations
	clan   // Interface for clan registry operations
}

// season defines methods for season configurations and preserved season records.
type season interface {
	CreateSeasonConfig(ctx context.Context, cfg model.SeasonConfig) (model.SeasonConfig, error)         // Creates a new season configuration
	GetSeasonConfig(ctx context.Context, id string) (*model.SeasonConfig, error)                        // Retrieves a season configuration by ID
	GetAllSeasonConfigs(ctx context.Context, limit, offset int) ([]model.SeasonConfig, error)           // Retrieves season configurations, newest first
	GetUnprocessedSeasonConfigs(ctx context.Context) ([]model.SeasonConfig, error)                      // Retrieves configurations awaiting a harvest
	MarkSeasonConfigProcessed(ctx context.Context, id string) error                                     // Flips is_processed, one way only
	UpsertPlayerSeasonRecord(ctx context.Context, record model.PlayerSeasonRecord) error                // Upserts a season record on (player, season, config)
	GetSeasonRecords(ctx context.Context, configID string, limit, offset int) ([]model.PlayerSeasonRecord, error) // Retrieves preserved records for a configuration
}

// player defines methods for the live tracking rows.
type player interface {
	TouchLivePlayer(ctx context.Context, tag, name string) error           // Registers or refreshes a live tracking row
	GetLivePlayer(ctx context.Context, tag string) (*model.LivePlayer, error) // Retrieves a live tracking row by tag
	GetAllLivePlayers(ctx context.Context) ([]model.LivePlayer, error)     // Retrieves every live tracking row
	BulkResetLiveTrophies(ctx context.Context, trophies int) (int64, error) // Resets every live trophy count to the baseline
}

// clan defines methods for the registered clan registry.
type clan interface {
	RegisterClan(ctx context.Context, c model.Clan) (model.Clan, error) // Registers a clan for tracking
	GetRegisteredClans(ctx context.Context) ([]model.Clan, error)       // Retrieves all registered clans
}

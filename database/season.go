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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

// CreateSeasonConfig inserts a new season configuration with a generated ID.
func (d Datasource) CreateSeasonConfig(ctx context.Context, cfg model.SeasonConfig) (model.SeasonConfig, error) {
	ctx, span := otel.Tracer("Season config").Start(ctx, "Saving season config to db")
	defer span.End()

	cfg.SeasonConfigID = GenerateUUIDWithSuffix("cfg")
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO season_configs (season_config_id, scheduled_at, is_processed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		cfg.SeasonConfigID, cfg.ScheduledAt, cfg.IsProcessed, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return model.SeasonConfig{}, apierror.NewAPIError(apierror.ErrConflict, "Season config with this ID already exists", err)
		}
		return model.SeasonConfig{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create season config", err)
	}
	return cfg, nil
}

// GetSeasonConfig retrieves a season configuration by its ID.
func (d Datasource) GetSeasonConfig(ctx context.Context, id string) (*model.SeasonConfig, error) {
	ctx, span := otel.Tracer("Season config").Start(ctx, "Getting season config from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx,
		`SELECT season_config_id, scheduled_at, is_processed, created_at, updated_at
		 FROM season_configs WHERE season_config_id = $1`, id)

	cfg := &model.SeasonConfig{}
	err := row.Scan(&cfg.SeasonConfigID, &cfg.ScheduledAt, &cfg.IsProcessed, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Season config with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan season config", err)
	}
	return cfg, nil
}

// GetAllSeasonConfigs retrieves season configurations, newest first.
func (d Datasource) GetAllSeasonConfigs(ctx context.Context, limit, offset int) ([]model.SeasonConfig, error) {
	ctx, span := otel.Tracer("Season config").Start(ctx, "Listing season configs")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx,
		`SELECT season_config_id, scheduled_at, is_processed, created_at, updated_at
		 FROM season_configs ORDER BY scheduled_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list season configs", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanSeasonConfigs(rows)
}

// GetUnprocessedSeasonConfigs retrieves every configuration still awaiting a
// harvest, oldest boundary first. Reconciliation walks this list on startup.
func (d Datasource) GetUnprocessedSeasonConfigs(ctx context.Context) ([]model.SeasonConfig, error) {
	ctx, span := otel.Tracer("Season config").Start(ctx, "Listing unprocessed season configs")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx,
		`SELECT season_config_id, scheduled_at, is_processed, created_at, updated_at
		 FROM season_configs WHERE is_processed = FALSE ORDER BY scheduled_at ASC`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list unprocessed season configs", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanSeasonConfigs(rows)
}

func scanSeasonConfigs(rows *sql.Rows) ([]model.SeasonConfig, error) {
	var configs []model.SeasonConfig
	for rows.Next() {
		cfg := model.SeasonConfig{}
		err := rows.Scan(&cfg.SeasonConfigID, &cfg.ScheduledAt, &cfg.IsProcessed, &cfg.CreatedAt, &cfg.UpdatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan season config", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating season configs", err)
	}
	return configs, nil
}

// MarkSeasonConfigProcessed flips is_processed to true. The transition is one
// way; marking an already processed configuration is a no-op.
func (d Datasource) MarkSeasonConfigProcessed(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("Season config").Start(ctx, "Marking season config processed")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx,
		`UPDATE season_configs SET is_processed = TRUE, updated_at = NOW()
		 WHERE season_config_id = $1 AND is_processed = FALSE`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark season config processed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read affected rows", err)
	}
	if affected == 0 {
		// Either missing or already processed. Only the former is an error.
		if _, err := d.GetSeasonConfig(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPlayerSeasonRecord writes a preserved season record. Conflicts on
// (player_tag, season_id, season_config_id) refresh name, clan, rank and
// trophies so redelivered harvests overwrite instead of duplicating.
func (d Datasource) UpsertPlayerSeasonRecord(ctx context.Context, record model.PlayerSeasonRecord) error {
	ctx, span := otel.Tracer("Season record").Start(ctx, "Upserting player season record")
	defer span.End()

	recordID := GenerateUUIDWithSuffix("rec")
	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO player_season_records
		 (record_id, player_tag, player_name, clan_tag, season_id, season_config_id, rank, trophies, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		 ON CONFLICT (player_tag, season_id, season_config_id)
		 DO UPDATE SET player_name = EXCLUDED.player_name,
		               clan_tag = EXCLUDED.clan_tag,
		               rank = EXCLUDED.rank,
		               trophies = EXCLUDED.trophies,
		               updated_at = NOW()`,
		recordID, record.PlayerTag, record.PlayerName, record.ClanTag,
		record.SeasonID, record.SeasonConfigID, record.Rank, record.Trophies)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert player season record", err)
	}
	return nil
}

// GetSeasonRecords retrieves preserved records for a configuration, best rank
// first.
func (d Datasource) GetSeasonRecords(ctx context.Context, configID string, limit, offset int) ([]model.PlayerSeasonRecord, error) {
	ctx, span := otel.Tracer("Season record").Start(ctx, "Listing player season records")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx,
		`SELECT record_id, player_tag, player_name, clan_tag, season_id, season_config_id, rank, trophies, created_at, updated_at
		 FROM player_season_records WHERE season_config_id = $1
		 ORDER BY rank ASC NULLS LAST, trophies DESC LIMIT $2 OFFSET $3`,
		configID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list player season records", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []model.PlayerSeasonRecord
	for rows.Next() {
		rec := model.PlayerSeasonRecord{}
		err := rows.Scan(&rec.RecordID, &rec.PlayerTag, &rec.PlayerName, &rec.ClanTag,
			&rec.SeasonID, &rec.SeasonConfigID, &rec.Rank, &rec.Trophies, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan player season record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating player season records", err)
	}
	return records, nil
}

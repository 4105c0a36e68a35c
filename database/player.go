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

	"go.opentelemetry.io/otel"

	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

// TouchLivePlayer registers a player for live tracking, or refreshes the name
// of an existing row. Trophy counts are never changed here; those belong to
// the monitoring feature and the bulk reset.
func (d Datasource) TouchLivePlayer(ctx context.Context, tag, name string) error {
	ctx, span := otel.Tracer("Live player").Start(ctx, "Touching live player")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO live_players (player_tag, player_name, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (player_tag)
		 DO UPDATE SET player_name = EXCLUDED.player_name, updated_at = NOW()`,
		tag, name)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to touch live player", err)
	}
	return nil
}

// GetLivePlayer retrieves a live tracking row by player tag.
func (d Datasource) GetLivePlayer(ctx context.Context, tag string) (*model.LivePlayer, error) {
	ctx, span := otel.Tracer("Live player").Start(ctx, "Getting live player from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx,
		`SELECT player_tag, player_name, trophies, attack_wins, created_at, updated_at
		 FROM live_players WHERE player_tag = $1`, tag)

	p := &model.LivePlayer{}
	err := row.Scan(&p.PlayerTag, &p.PlayerName, &p.Trophies, &p.AttackWins, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Live player with tag '%s' not found", tag), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan live player", err)
	}
	return p, nil
}

// GetAllLivePlayers retrieves every live tracking row.
func (d Datasource) GetAllLivePlayers(ctx context.Context) ([]model.LivePlayer, error) {
	ctx, span := otel.Tracer("Live player").Start(ctx, "Listing live players")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx,
		`SELECT player_tag, player_name, trophies, attack_wins, created_at, updated_at
		 FROM live_players ORDER BY trophies DESC`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list live players", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var players []model.LivePlayer
	for rows.Next() {
		p := model.LivePlayer{}
		err := rows.Scan(&p.PlayerTag, &p.PlayerName, &p.Trophies, &p.AttackWins, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan live player", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating live players", err)
	}
	return players, nil
}

// BulkResetLiveTrophies pulls every live trophy count back to the season
// baseline in a single statement and returns the affected row count. Last
// write wins; concurrent monitoring increments inside the reset window are
// intentionally discarded.
func (d Datasource) BulkResetLiveTrophies(ctx context.Context, trophies int) (int64, error) {
	ctx, span := otel.Tracer("Live player").Start(ctx, "Bulk resetting live trophies")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx,
		`UPDATE live_players SET trophies = $1, updated_at = NOW()`, trophies)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to bulk reset live trophies", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read affected rows", err)
	}
	return affected, nil
}

// RegisterClan adds a clan to the tracked registry.
func (d Datasource) RegisterClan(ctx context.Context, c model.Clan) (model.Clan, error) {
	ctx, span := otel.Tracer("Clan").Start(ctx, "Registering clan")
	defer span.End()

	err := d.Conn.QueryRowContext(ctx,
		`INSERT INTO clans (clan_tag, name, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (clan_tag) DO UPDATE SET name = EXCLUDED.name
		 RETURNING clan_tag, name, created_at`,
		c.ClanTag, c.Name).Scan(&c.ClanTag, &c.Name, &c.CreatedAt)
	if err != nil {
		return model.Clan{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to register clan", err)
	}
	return c, nil
}

// GetRegisteredClans retrieves all registered clans.
func (d Datasource) GetRegisteredClans(ctx context.Context) ([]model.Clan, error) {
	ctx, span := otel.Tracer("Clan").Start(ctx, "Listing registered clans")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx,
		`SELECT clan_tag, name, created_at FROM clans ORDER BY created_at ASC`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list registered clans", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var clans []model.Clan
	for rows.Next() {
		c := model.Clan{}
		err := rows.Scan(&c.ClanTag, &c.Name, &c.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan clan", err)
		}
		clans = append(clans, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating clans", err)
	}
	return clans, nil
}

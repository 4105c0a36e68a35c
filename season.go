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

	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

// CreateSeasonConfig validates and persists a new season boundary, then
// schedules its harvest. A scheduling failure is logged, not returned: the
// configuration exists and the next reconciliation pass will repair the queue.
func (l *Legendtrack) CreateSeasonConfig(ctx context.Context, cfg model.SeasonConfig) (*model.SeasonConfig, error) {
	ctx, span := tracer.Start(ctx, "Creating season config")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid season config", err)
	}

	created, err := l.datasource.CreateSeasonConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := l.ScheduleHarvest(ctx, created.SeasonConfigID); err != nil {
		logrus.Errorf("season config %s created but scheduling failed: %v", created.SeasonConfigID, err)
	}

	return &created, nil
}

// GetSeasonConfig retrieves a season configuration by ID.
func (l *Legendtrack) GetSeasonConfig(ctx context.Context, id string) (*model.SeasonConfig, error) {
	return l.datasource.GetSeasonConfig(ctx, id)
}

// GetAllSeasonConfigs lists season configurations, newest boundary first.
func (l *Legendtrack) GetAllSeasonConfigs(ctx context.Context, limit, offset int) ([]model.SeasonConfig, error) {
	return l.datasource.GetAllSeasonConfigs(ctx, limit, offset)
}

// GetSeasonRecords lists the preserved records captured for a configuration.
func (l *Legendtrack) GetSeasonRecords(ctx context.Context, configID string, limit, offset int) ([]model.PlayerSeasonRecord, error) {
	return l.datasource.GetSeasonRecords(ctx, configID, limit, offset)
}

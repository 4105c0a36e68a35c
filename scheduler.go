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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hordestats/legendtrack/internal/apierror"
)

// ScheduleHarvest guarantees at most one queued harvest task for a
// configuration. Missing, already processed and past-boundary configurations
// are skipped silently; the call is safe to repeat from any number of
// concurrent callers.
func (l *Legendtrack) ScheduleHarvest(ctx context.Context, configID string) error {
	ctx, span := tracer.Start(ctx, "Scheduling harvest")
	defer span.End()

	cfg, err := l.datasource.GetSeasonConfig(ctx, configID)
	if err != nil {
		if apierror.IsNotFound(err) {
			logrus.Warnf("not scheduling harvest: season config %s not found", configID)
			return nil
		}
		return err
	}

	if cfg.IsProcessed {
		logrus.Debugf("not scheduling harvest: season config %s already processed", configID)
		return nil
	}
	if !cfg.ScheduledAt.After(time.Now()) {
		logrus.Warnf("not scheduling harvest: season config %s boundary %s is in the past", configID, cfg.ScheduledAt)
		return nil
	}

	// Belt and suspenders: the payload scan catches duplicates before they
	// are due, the task ID uniqueness catches the enqueue race itself.
	exists, err := l.queue.PendingHarvestExists(configID)
	if err != nil {
		return err
	}
	if exists {
		logrus.Infof("harvest for season config %s already queued, skipping", configID)
		return nil
	}

	return l.queue.EnqueueHarvest(ctx, configID, cfg.ScheduledAt)
}

// ReconcileSchedules re-scans every unprocessed configuration and re-enqueues
// any missing harvest task. Run on worker startup and periodically, it repairs
// queue state lost to a crash between configuration creation and enqueue.
// Fully idempotent; a failure on one configuration never aborts the rest.
func (l *Legendtrack) ReconcileSchedules(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Reconciling harvest schedules")
	defer span.End()

	configs, err := l.datasource.GetUnprocessedSeasonConfigs(ctx)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for _, cfg := range configs {
		if err := l.ScheduleHarvest(ctx, cfg.SeasonConfigID); err != nil {
			logrus.Errorf("failed to schedule harvest for season config %s: %v", cfg.SeasonConfigID, err)
			continue
		}
		scheduled++
	}

	logrus.Infof("Harvest schedule reconciliation complete: %d/%d configurations checked", scheduled, len(configs))
	return scheduled, nil
}

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

// GetLivePlayer reads a player snapshot through the cache. A hit serves the
// cached copy; a miss falls back to the datasource and repopulates the cache
// with the configured TTL.
func (l *Legendtrack) GetLivePlayer(ctx context.Context, tag string) (*model.PlayerSnapshot, error) {
	var snap model.PlayerSnapshot
	if err := l.cache.Get(ctx, model.SnapshotKey(tag), &snap); err != nil {
		logrus.Warnf("snapshot cache read failed for %s: %v", tag, err)
	} else if snap.PlayerTag != "" {
		return &snap, nil
	}

	p, err := l.datasource.GetLivePlayer(ctx, tag)
	if err != nil {
		return nil, err
	}

	snap = p.Snapshot()
	conf, err := config.Fetch()
	if err != nil {
		return &snap, nil
	}
	if err := l.cache.Set(ctx, model.SnapshotKey(tag), snap, conf.SnapshotTTL()); err != nil {
		logrus.Warnf("snapshot cache write failed for %s: %v", tag, err)
	}
	return &snap, nil
}

// GetAllLivePlayers lists every live tracking row, straight from the
// datasource.
func (l *Legendtrack) GetAllLivePlayers(ctx context.Context) ([]model.LivePlayer, error) {
	return l.datasource.GetAllLivePlayers(ctx)
}

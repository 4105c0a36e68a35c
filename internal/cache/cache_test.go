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
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hordestats/legendtrack/model"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := newRedisCache(mr.Addr())
	require.NoError(t, err)
	return c
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	snap := model.PlayerSnapshot{PlayerTag: "#M1", PlayerName: "m1", Trophies: 5000}
	require.NoError(t, c.Set(ctx, model.SnapshotKey("#M1"), snap, 10*time.Minute))

	var got model.PlayerSnapshot
	require.NoError(t, c.Get(ctx, model.SnapshotKey("#M1"), &got))
	assert.Equal(t, snap.PlayerTag, got.PlayerTag)
	assert.Equal(t, snap.Trophies, got.Trophies)
}

func TestCacheMissIsNotAnError(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var got model.PlayerSnapshot
	require.NoError(t, c.Get(ctx, model.SnapshotKey("#NOBODY"), &got))
	assert.Empty(t, got.PlayerTag)
}

func TestCacheOverwrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := model.SnapshotKey("#M1")

	require.NoError(t, c.Set(ctx, key, model.PlayerSnapshot{PlayerTag: "#M1", Trophies: 6200}, time.Minute))
	require.NoError(t, c.Set(ctx, key, model.PlayerSnapshot{PlayerTag: "#M1", Trophies: 5000}, time.Minute))

	var got model.PlayerSnapshot
	require.NoError(t, c.Get(ctx, key, &got))
	assert.Equal(t, 5000, got.Trophies)
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := model.SnapshotKey("#M1")

	require.NoError(t, c.Set(ctx, key, model.PlayerSnapshot{PlayerTag: "#M1"}, time.Minute))
	require.NoError(t, c.Delete(ctx, key))
}

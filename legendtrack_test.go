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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/database/mocks"
)

// newTestService spins up a miniredis-backed service with a mocked datasource
// and gateway. The queue and cache talk to the embedded redis, so inspector
// assertions run against real queue state.
func newTestService(t *testing.T) (*Legendtrack, *mocks.MockDataSource, *MockClashGateway, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
	})

	mockDS := &mocks.MockDataSource{}
	mockGW := &MockClashGateway{}

	svc, err := NewLegendtrack(mockDS, mockGW)
	require.NoError(t, err)

	return svc, mockDS, mockGW, mr
}

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

	"github.com/stretchr/testify/mock"

	"github.com/hordestats/legendtrack/model"
)

// MockClashGateway is a mock implementation of the gateway.ClashGateway
// contract, used to simulate upstream roster and player fetches in tests.
type MockClashGateway struct {
	mock.Mock
}

func (m *MockClashGateway) GetClanMembers(ctx context.Context, clanTag string) ([]model.ClanMember, error) {
	args := m.Called(ctx, clanTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ClanMember), args.Error(1)
}

func (m *MockClashGateway) GetPlayer(ctx context.Context, playerTag string) (*model.Player, error) {
	args := m.Called(ctx, playerTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Player), args.Error(1)
}

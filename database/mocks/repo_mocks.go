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
package mocks

import (
	"context"

	"github.com/hordestats/legendtrack/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Season methods

func (m *MockDataSource) CreateSeasonConfig(ctx context.Context, cfg model.SeasonConfig) (model.SeasonConfig, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(model.SeasonConfig), args.Error(1)
}

func (m *MockDataSource) GetSeasonConfig(ctx context.Context, id string) (*model.SeasonConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SeasonConfig), args.Error(1)
}

func (m *MockDataSource) GetAllSeasonConfigs(ctx context.Context, limit, offset int) ([]model.SeasonConfig, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SeasonConfig), args.Error(1)
}

func (m *MockDataSource) GetUnprocessedSeasonConfigs(ctx context.Context) ([]model.SeasonConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SeasonConfig), args.Error(1)
}

func (m *MockDataSource) MarkSeasonConfigProcessed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDataSource) UpsertPlayerSeasonRecord(ctx context.Context, record model.PlayerSeasonRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDataSource) GetSeasonRecords(ctx context.Context, configID string, limit, offset int) ([]model.PlayerSeasonRecord, error) {
	args := m.Called(ctx, configID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlayerSeasonRecord), args.Error(1)
}

// Live player methods

func (m *MockDataSource) TouchLivePlayer(ctx context.Context, tag, name string) error {
	args := m.Called(ctx, tag, name)
	return args.Error(0)
}

func (m *MockDataSource) GetLivePlayer(ctx context.Context, tag string) (*model.LivePlayer, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LivePlayer), args.Error(1)
}

func (m *MockDataSource) GetAllLivePlayers(ctx context.Context) ([]model.LivePlayer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LivePlayer), args.Error(1)
}

func (m *MockDataSource) BulkResetLiveTrophies(ctx context.Context, trophies int) (int64, error) {
	args := m.Called(ctx, trophies)
	return args.Get(0).(int64), args.Error(1)
}

// Clan methods

func (m *MockDataSource) RegisterClan(ctx context.Context, c model.Clan) (model.Clan, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.Clan), args.Error(1)
}

func (m *MockDataSource) GetRegisteredClans(ctx context.Context) ([]model.Clan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Clan), args.Error(1)
}

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

	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

// RegisterClan adds a clan to the tracked registry so future harvests
// enumerate its roster.
func (l *Legendtrack) RegisterClan(ctx context.Context, clan model.Clan) (*model.Clan, error) {
	if err := clan.Validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid clan", err)
	}

	registered, err := l.datasource.RegisterClan(ctx, clan)
	if err != nil {
		return nil, err
	}
	return &registered, nil
}

// GetRegisteredClans lists every tracked clan.
func (l *Legendtrack) GetRegisteredClans(ctx context.Context) ([]model.Clan, error) {
	return l.datasource.GetRegisteredClans(ctx)
}

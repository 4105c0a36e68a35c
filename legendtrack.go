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
	"embed"

	"go.opentelemetry.io/otel"

	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/database"
	"github.com/hordestats/legendtrack/gateway"
	"github.com/hordestats/legendtrack/internal/cache"
)

var tracer = otel.Tracer("legendtrack.harvest")

// Legendtrack is the season harvesting service. The datasource, upstream
// gateway, cache and queue are injected so tests can substitute fakes.
type Legendtrack struct {
	queue      *Queue
	cache      cache.Cache
	gateway    gateway.ClashGateway
	datasource database.IDataSource
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewLegendtrack initializes the service with the provided datasource and
// upstream gateway. Queue and cache connections are built from configuration.
func NewLegendtrack(db database.IDataSource, gw gateway.ClashGateway) (*Legendtrack, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	newQueue := NewQueue(configuration)
	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	return &Legendtrack{
		datasource: db,
		gateway:    gw,
		queue:      newQueue,
		cache:      newCache,
	}, nil
}

// Queue exposes the underlying queue, mainly for the worker process.
func (l *Legendtrack) Queue() *Queue {
	return l.queue
}

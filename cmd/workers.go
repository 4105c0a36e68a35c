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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	legendtrack "github.com/hordestats/legendtrack"
	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/internal/notification"
	redis_db "github.com/hordestats/legendtrack/internal/redis-db"
)

// processHarvest consumes a due harvest task. A missing configuration is
// terminal: the task is archived for inspection instead of retried. Any other
// failure is returned so the queue retries with backoff and eventually
// dead-letters the task.
func (a *appInstance) processHarvest(ctx context.Context, t *asynq.Task) error {
	var payload legendtrack.HarvestTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return fmt.Errorf("malformed harvest payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := a.service.RunHarvest(ctx, payload.SeasonConfigID)
	if err != nil {
		if apierror.IsNotFound(err) {
			logrus.Errorf("harvest task for missing season config %s, archiving", payload.SeasonConfigID)
			return fmt.Errorf("season config %s not found: %w", payload.SeasonConfigID, asynq.SkipRetry)
		}
		retryCount, _ := asynq.GetRetryCount(ctx)
		logrus.Errorf("harvest for %s failed (attempt %d), pushing back for retry: %v", payload.SeasonConfigID, retryCount, err)
		return err
	}

	if result.AlreadyProcessed {
		log.Println(" [*] Harvest skipped, config already processed", payload.SeasonConfigID)
		return nil
	}
	log.Printf(" [*] Harvest processed for %s: %d records saved", payload.SeasonConfigID, result.RecordsSaved)
	return nil
}

// initializeWorkerServer builds the asynq consumer. Concurrency is pinned to
// one: the pipeline ends in a global live-trophy reset that must never
// interleave with another harvest's reset.
func initializeWorkerServer(conf *config.Configuration) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				conf.Queue.HarvestQueue: 1,
			},
		},
	), nil
}

// initializeTracing installs an OTLP trace exporter when an endpoint is
// configured. Returns a shutdown function, or nil when tracing is disabled.
func initializeTracing(ctx context.Context, cfg *config.Configuration) (func(context.Context) error, error) {
	if cfg.Otel.Endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Otel.Endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// workerCommands defines the "workers" command. The worker reconciles harvest
// schedules on startup, keeps reconciling on a cron, and consumes due harvest
// tasks serially.
func workerCommands(a *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start legendtrack workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := initializeTracing(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}

			// Repair any harvest task lost to a crash before consuming.
			if _, err := a.service.ReconcileSchedules(ctx); err != nil {
				notification.NotifyError(err)
				logrus.Errorf("startup schedule reconciliation failed: %v", err)
			}

			// Keep repairing while the worker runs.
			c := cron.New()
			_, err = c.AddFunc(conf.Harvest.ReconcileCron, func() {
				if _, err := a.service.ReconcileSchedules(context.Background()); err != nil {
					logrus.Errorf("periodic schedule reconciliation failed: %v", err)
				}
			})
			if err != nil {
				log.Fatalf("invalid reconcile cron expression %q: %v", conf.Harvest.ReconcileCron, err)
			}
			c.Start()
			defer c.Stop()

			srv, err := initializeWorkerServer(conf)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			mux.HandleFunc(conf.Queue.HarvestQueue, a.processHarvest)

			// Start asynqmon server for health checks and monitoring.
			redisOption, _ := redis_db.ParseRedisURL(conf.Redis.Dns)
			h := asynqmon.New(asynqmon.Options{
				RootPath: "/monitoring",
				RedisConnOpt: asynq.RedisClientOpt{
					Addr:      redisOption.Addr,
					Password:  redisOption.Password,
					DB:        redisOption.DB,
					TLSConfig: redisOption.TLSConfig,
				},
			})

			go func() {
				monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				if err := http.ListenAndServe(monitoringAddr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}

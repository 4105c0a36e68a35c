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
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hordestats/legendtrack/config"
	redis_db "github.com/hordestats/legendtrack/internal/redis-db"
)

// Queue wraps the durable delayed-job queue holding harvest tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// HarvestTaskPayload is the body of a queued harvest job.
type HarvestTaskPayload struct {
	SeasonConfigID string `json:"season_config_id"`
}

// HarvestTaskID derives the deduplication key for a configuration. The queue
// enforces uniqueness on this ID, so two concurrent enqueues for the same
// configuration collapse into one task.
func HarvestTaskID(configID string) string {
	return "harvest:" + configID
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueHarvest schedules a harvest task to run at the season boundary. A
// boundary already in the past runs immediately. An existing task with the
// same ID makes this a no-op.
func (q *Queue) EnqueueHarvest(ctx context.Context, configID string, scheduledAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Adding harvest task to Redis queue")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(HarvestTaskPayload{SeasonConfigID: configID})
	if err != nil {
		return err
	}

	delay := time.Until(scheduledAt)
	if delay < 0 {
		delay = 0
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(HarvestTaskID(configID)),
		asynq.Queue(cfg.Queue.HarvestQueue),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.HarvestQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Printf(" [*] Harvest task already queued for config %s", configID)
			return nil
		}
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued harvest for config %s (due in %v)", configID, delay)
	return nil
}

// PendingHarvestExists scans queued harvest tasks for one carrying the given
// configuration ID. Scheduled, pending, retry and active tasks all count: a
// task mid-flight is still a duplicate until the configuration is marked
// processed.
func (q *Queue) PendingHarvestExists(configID string) (bool, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return false, err
	}

	listers := []func(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error){
		q.Inspector.ListScheduledTasks,
		q.Inspector.ListPendingTasks,
		q.Inspector.ListRetryTasks,
		q.Inspector.ListActiveTasks,
	}

	for _, list := range listers {
		tasks, err := list(cfg.Queue.HarvestQueue)
		if err != nil {
			if errors.Is(err, asynq.ErrQueueNotFound) {
				// Nothing enqueued on this queue yet.
				continue
			}
			return false, err
		}
		for _, t := range tasks {
			var p HarvestTaskPayload
			if json.Unmarshal(t.Payload, &p) == nil && p.SeasonConfigID == configID {
				return true, nil
			}
		}
	}
	return false, nil
}

// GetQueuedHarvest retrieves the queued harvest task for a configuration, or
// nil if none exists.
func (q *Queue) GetQueuedHarvest(configID string) (*asynq.TaskInfo, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	task, err := q.Inspector.GetTaskInfo(cfg.Queue.HarvestQueue, HarvestTaskID(configID))
	if err != nil {
		if errors.Is(err, asynq.ErrQueueNotFound) || errors.Is(err, asynq.ErrTaskNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

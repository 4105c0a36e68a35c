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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

var ConfigStore atomic.Value

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"LEGENDTRACK_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"LEGENDTRACK_REDIS_DNS"`
}

type QueueConfig struct {
	HarvestQueue     string `json:"harvest_queue" envconfig:"LEGENDTRACK_QUEUE_HARVEST_QUEUE"`
	MaxRetryAttempts int    `json:"max_retry_attempts" envconfig:"LEGENDTRACK_QUEUE_MAX_RETRY_ATTEMPTS"`
	MonitoringPort   string `json:"monitoring_port" envconfig:"LEGENDTRACK_QUEUE_MONITORING_PORT"`
}

// ClashAPIConfig holds the connection settings for the upstream ranking API.
// Timeout bounds every single request; RequestsPerSecond throttles the client
// below the upstream rate limit.
type ClashAPIConfig struct {
	BaseUrl           string  `json:"base_url" envconfig:"LEGENDTRACK_CLASH_API_BASE_URL"`
	Token             string  `json:"token" envconfig:"LEGENDTRACK_CLASH_API_TOKEN"`
	TimeoutSec        int     `json:"timeout_sec" envconfig:"LEGENDTRACK_CLASH_API_TIMEOUT_SEC"`
	RequestsPerSecond float64 `json:"requests_per_second" envconfig:"LEGENDTRACK_CLASH_API_RPS"`
}

type HarvestConfig struct {
	ResetTrophies  int    `json:"reset_trophies" envconfig:"LEGENDTRACK_HARVEST_RESET_TROPHIES"`
	SnapshotTTLMin int    `json:"snapshot_ttl_min" envconfig:"LEGENDTRACK_HARVEST_SNAPSHOT_TTL_MIN"`
	ReconcileCron  string `json:"reconcile_cron" envconfig:"LEGENDTRACK_HARVEST_RECONCILE_CRON"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"LEGENDTRACK_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type OtelConfig struct {
	Endpoint string `json:"endpoint" envconfig:"LEGENDTRACK_OTEL_ENDPOINT"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"LEGENDTRACK_PROJECT_NAME"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Queue        QueueConfig      `json:"queue"`
	ClashAPI     ClashAPIConfig   `json:"clash_api"`
	Harvest      HarvestConfig    `json:"harvest"`
	Notification Notification     `json:"notification"`
	Otel         OtelConfig       `json:"otel"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("legendtrack", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called legendtrack.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Legendtrack Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.ClashAPI.BaseUrl == "" {
		cnf.ClashAPI.BaseUrl = "https://api.clashofclans.com/v1"
	}
	if cnf.ClashAPI.TimeoutSec <= 0 {
		cnf.ClashAPI.TimeoutSec = 10
	}
	if cnf.ClashAPI.RequestsPerSecond <= 0 {
		cnf.ClashAPI.RequestsPerSecond = 10
	}

	if cnf.Queue.HarvestQueue == "" {
		cnf.Queue.HarvestQueue = "new:harvest"
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5003"
	}

	if cnf.Harvest.ResetTrophies <= 0 {
		// Legend league baseline every player is pulled back to at a season
		// boundary.
		cnf.Harvest.ResetTrophies = 5000
	}
	if cnf.Harvest.SnapshotTTLMin <= 0 {
		cnf.Harvest.SnapshotTTLMin = 10
	}
	if cnf.Harvest.ReconcileCron == "" {
		cnf.Harvest.ReconcileCron = "@every 15m"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.ClashAPI.BaseUrl = strings.TrimSpace(cnf.ClashAPI.BaseUrl)
	cnf.ClashAPI.Token = strings.TrimSpace(cnf.ClashAPI.Token)

	return nil
}

// SnapshotTTL returns the cached snapshot expiry as a duration.
func (cnf *Configuration) SnapshotTTL() time.Duration {
	return time.Duration(cnf.Harvest.SnapshotTTLMin) * time.Minute
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.applyTestDefaults()
	ConfigStore.Store(mockConfig)
}

func (cnf *Configuration) applyTestDefaults() {
	if cnf.Queue.HarvestQueue == "" {
		cnf.Queue.HarvestQueue = "new:harvest"
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}
	if cnf.Harvest.ResetTrophies <= 0 {
		cnf.Harvest.ResetTrophies = 5000
	}
	if cnf.Harvest.SnapshotTTLMin <= 0 {
		cnf.Harvest.SnapshotTTLMin = 10
	}
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

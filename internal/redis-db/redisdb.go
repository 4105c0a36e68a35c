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

package redis_db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps a universal client so the same handle serves both the cache
// layer and the asynq broker options.
type Redis struct {
	address string
	client  redis.UniversalClient
}

// ParseRedisURL parses a Redis DNS entry into client options. Accepts both
// docker-style "host:port" addresses and full redis:// URLs with credentials.
func ParseRedisURL(rawURL string) (*redis.Options, error) {
	// Don't modify docker-style addresses (e.g. redis:6379)
	if strings.Count(rawURL, ":") == 1 && !strings.Contains(rawURL, "@") && !strings.Contains(rawURL, "//") {
		return &redis.Options{
			Addr: rawURL,
		}, nil
	}

	// Handle URLs that carry a bare password before the host
	if strings.HasPrefix(rawURL, "redis://") && strings.Contains(rawURL, "@") {
		parts := strings.Split(strings.TrimPrefix(rawURL, "redis://"), "@")
		if len(parts) == 2 && !strings.Contains(parts[0], ":") {
			rawURL = fmt.Sprintf("redis://:%s@%s", parts[0], parts[1])
		}
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return opts, nil
}

// NewRedisClient creates a Redis client from the configured address and
// verifies the connection with a short ping.
func NewRedisClient(address string) (*Redis, error) {
	if address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	opts, err := ParseRedisURL(address)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return &Redis{address: address, client: client}, nil
}

// Client returns the underlying universal client for direct Redis operations.
func (r *Redis) Client() redis.UniversalClient {
	return r.client
}

// MakeRedisClient exposes the client as an interface for packages that accept
// generic Redis connections.
func (r *Redis) MakeRedisClient() interface{} {
	return r.client
}

package redis_db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected *redis.Options
		wantErr  bool
	}{
		{
			name: "simple docker style",
			url:  "redis:6379",
			expected: &redis.Options{
				Addr: "redis:6379",
			},
			wantErr: false,
		},
		{
			name: "redis url with password",
			url:  "redis://:password123@localhost:6379",
			expected: &redis.Options{
				Addr:     "localhost:6379",
				Password: "password123",
			},
			wantErr: false,
		},
		{
			name: "redis url with bare password",
			url:  "redis://password123@localhost:6379",
			expected: &redis.Options{
				Addr:     "localhost:6379",
				Password: "password123",
			},
			wantErr: false,
		},
		{
			name: "managed redis host",
			url:  "myinstance.redis.cache.windows.net:6380",
			expected: &redis.Options{
				Addr: "myinstance.redis.cache.windows.net:6380",
			},
			wantErr: false,
		},
		{
			name:    "garbage url",
			url:     "redis://host:not-a-port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected.Addr, got.Addr)
			assert.Equal(t, tt.expected.Password, got.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	t.Run("empty address", func(t *testing.T) {
		client, err := NewRedisClient("")
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("reachable address", func(t *testing.T) {
		client, err := NewRedisClient(mr.Addr())
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NotNil(t, client.Client())

		ctx := context.Background()
		require.NoError(t, client.Client().Set(ctx, "probe", "ok", time.Minute).Err())
		got, err := client.Client().Get(ctx, "probe").Result()
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})

	t.Run("unreachable address", func(t *testing.T) {
		client, err := NewRedisClient("localhost:1")
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

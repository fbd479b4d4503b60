package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewCache builds a redis client and pings it. The client is returned even when
// the ping fails so callers can decide to degrade.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, err
	}
	return client, nil
}

// PingHealthCheck reports redis reachability, caching the answer for interval.
func PingHealthCheck(client redis.UniversalClient, interval time.Duration) func() bool {
	var (
		mu      sync.Mutex
		last    time.Time
		healthy bool
	)
	return func() bool {
		if client == nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		if time.Since(last) < interval {
			return healthy
		}
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		healthy = client.Ping(ctx).Err() == nil
		last = time.Now()
		return healthy
	}
}

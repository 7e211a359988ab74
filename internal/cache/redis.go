package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type ConnectionInfo struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	Timeout     time.Duration
}

// Connect opens a Redis client and pings it once.
func Connect(info ConnectionInfo) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         info.Addr,
		Password:     info.Password,
		DB:           info.DB,
		DialTimeout:  info.DialTimeout,
		ReadTimeout:  info.Timeout,
		WriteTimeout: info.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), info.Timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

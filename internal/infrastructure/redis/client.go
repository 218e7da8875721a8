package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-attendance/internal/config"
)

// NewClient はキャッシュ用のRedisクライアントを作成する
// 接続は遅延されるので、起動時の疎通確認は Ping で行う
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// 障害時にリトライで待たされるよりミス扱いで DB に行く方が速い
		MaxRetries: 1,
	})
}

// Ping は起動時の疎通確認
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis(%s)に接続できません: %w", client.Options().Addr, err)
	}
	return nil
}

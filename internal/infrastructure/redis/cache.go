package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
)

const (
	// scanBatch は SCAN 1回あたりの件数ヒント
	scanBatch = 100

	versionKeyPrefix = "cache:version:"
	// versionTTL は読み込み1回の所要時間より十分長いこと
	versionTTL = time.Hour
)

// setIfVersionScript は無効化バージョンが一致する場合だけ値を保存する
// KEYS[1]=キー KEYS[2]=バージョンキー ARGV[1]=値 ARGV[2]=期待バージョン ARGV[3]=TTL(ms)
const setIfVersionScript = `
local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`

func versionKey(scope string) string { return versionKeyPrefix + scope }

// Cache は Redis を使ったキャッシュ
// 値は JSON で保存する。障害はすべてログに残して「ミス」「失敗」として扱い、
// 呼び出し側にエラーを返さない
type Cache struct {
	client     *redis.Client
	defaultTTL time.Duration
	log        *zap.Logger
}

// NewCache は新しいCacheを作成する
func NewCache(client *redis.Client, defaultTTL time.Duration) *Cache {
	return &Cache{
		client:     client,
		defaultTTL: defaultTTL,
		log:        logger.Named("cache"),
	}
}

// Get はキーの値を dest にデコードする。ヒットした場合のみ true
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("キャッシュ取得に失敗", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("キャッシュのデコードに失敗", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set は値を保存する。ttl が 0 以下ならデフォルトTTLを使う
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, ttl, ok := c.encode(key, value, ttl)
	if !ok {
		return false
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("キャッシュ保存に失敗", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Version は scope の無効化バージョンを返す。一度も無効化されていなければ 0
func (c *Cache) Version(ctx context.Context, scope string) (int64, bool) {
	v, err := c.client.Get(ctx, versionKey(scope)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.log.Warn("キャッシュバージョン取得に失敗", zap.String("scope", scope), zap.Error(err))
		return 0, false
	}
	return v, true
}

// SetIfVersion は scope が version から進んでいなければ保存する
// 比較と保存は Lua スクリプトでまとめて行う
func (c *Cache) SetIfVersion(ctx context.Context, key, scope string, value any, ttl time.Duration, version int64) bool {
	data, ttl, ok := c.encode(key, value, ttl)
	if !ok {
		return false
	}
	n, err := c.client.Eval(ctx, setIfVersionScript, []string{key, versionKey(scope)}, data, version, ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warn("キャッシュ保存に失敗", zap.String("key", key), zap.Error(err))
		return false
	}
	if n == 0 {
		c.log.Debug("読み込み中に無効化されたため保存しない", zap.String("key", key), zap.Int64("version", version))
		return false
	}
	return true
}

func (c *Cache) encode(key string, value any, ttl time.Duration) ([]byte, time.Duration, bool) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("キャッシュのエンコードに失敗", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}
	return data, ttl, true
}

// Delete はキーを削除し、キーのバージョンを進める
func (c *Cache) Delete(ctx context.Context, key string) bool {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		bumpVersion(ctx, pipe, key)
		return nil
	})
	if err != nil {
		c.log.Warn("キャッシュ削除に失敗", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func bumpVersion(ctx context.Context, pipe redis.Pipeliner, scope string) {
	pipe.Incr(ctx, versionKey(scope))
	pipe.Expire(ctx, versionKey(scope), versionTTL)
}

// DeleteByPrefix は prefix で始まるキーを SCAN で列挙して削除し、削除件数を返す
// バージョンは prefix 単位で進める
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) int {
	if _, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		bumpVersion(ctx, pipe, prefix)
		return nil
	}); err != nil {
		c.log.Warn("キャッシュバージョン更新に失敗", zap.String("prefix", prefix), zap.Error(err))
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			c.log.Warn("キャッシュのスキャンに失敗", zap.String("prefix", prefix), zap.Error(err))
			return deleted
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.log.Warn("キャッシュ一括削除に失敗", zap.String("prefix", prefix), zap.Error(err))
				return deleted
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted
		}
	}
}

// Exists はキーの存在を返す
func (c *Cache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.log.Warn("キャッシュ存在確認に失敗", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// Ping はRedisへの疎通を返す
func (c *Cache) Ping(ctx context.Context) bool {
	if err := Ping(ctx, c.client); err != nil {
		c.log.Warn("キャッシュ疎通確認に失敗", zap.Error(err))
		return false
	}
	return true
}

package application

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache はサービスが利用するキャッシュのポート
// 実装はすべてベストエフォートで、障害時もエラーを返さずミス/失敗として振る舞う
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	DeleteByPrefix(ctx context.Context, prefix string) int
	Exists(ctx context.Context, key string) bool

	// Version は scope の無効化バージョンを返す。Delete/DeleteByPrefix のたびに進む
	// 取得できない場合は ok が false
	Version(ctx context.Context, scope string) (version int64, ok bool)
	// SetIfVersion は scope のバージョンが version のままなら保存する
	SetIfVersion(ctx context.Context, key, scope string, value any, ttl time.Duration, version int64) bool

	Ping(ctx context.Context) bool
}

// CacheTTL は名前空間ごとのTTL
type CacheTTL struct {
	Default    time.Duration
	Statistics time.Duration
	Attendance time.Duration
}

// DefaultCacheTTL は標準のTTLを返す
func DefaultCacheTTL() CacheTTL {
	return CacheTTL{
		Default:    300 * time.Second,
		Statistics: 60 * time.Second,
		Attendance: 120 * time.Second,
	}
}

// キャッシュキーの名前空間
const (
	eventListPrefix       = "events:list:"
	participantListPrefix = "participants:list:"
)

func eventKey(id int64) string { return fmt.Sprintf("event:%d", id) }
func eventListKey(skip, limit int) string {
	return fmt.Sprintf("%s%d:%d", eventListPrefix, skip, limit)
}
func eventStatsKey(id int64) string       { return fmt.Sprintf("event:stats:%d", id) }
func eventAttendancesKey(id int64) string { return fmt.Sprintf("event:attendances:%d", id) }
func participantKey(id int64) string      { return fmt.Sprintf("participant:%d", id) }
func participantListKey(skip, limit int) string {
	return fmt.Sprintf("%s%d:%d", participantListPrefix, skip, limit)
}
func participantAttendancesKey(id int64) string { return fmt.Sprintf("participant:attendances:%d", id) }

// invalidationScope はキーを無効化する単位を返す
// 一覧はプレフィックス単位、それ以外はキー単位で消される
func invalidationScope(key string) string {
	for _, prefix := range []string{eventListPrefix, participantListPrefix} {
		if strings.HasPrefix(key, prefix) {
			return prefix
		}
	}
	return key
}

// readThrough はキャッシュにあればそれを返し、なければ load の結果を保存して返す
// load がエラーの場合は何もキャッシュしない
//
// load の前にバージョンを読み、load 中に無効化が入った場合は保存しない。
// 更新がコミット前の値を、無効化の後で書き戻さないため
func readThrough[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	scope := invalidationScope(key)
	version, ok := c.Version(ctx, scope)

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if ok {
		c.SetIfVersion(ctx, key, scope, v, ttl, version)
	}
	return v, nil
}

// noopCache はキャッシュ未設定時に使う。常にミスする
type noopCache struct{}

func (noopCache) Get(context.Context, string, any) bool                { return false }
func (noopCache) Set(context.Context, string, any, time.Duration) bool { return false }
func (noopCache) Delete(context.Context, string) bool                  { return false }
func (noopCache) DeleteByPrefix(context.Context, string) int           { return 0 }
func (noopCache) Exists(context.Context, string) bool                  { return false }
func (noopCache) Ping(context.Context) bool                            { return false }
func (noopCache) Version(context.Context, string) (int64, bool)        { return 0, false }
func (noopCache) SetIfVersion(context.Context, string, string, any, time.Duration, int64) bool {
	return false
}

func cacheOrNoop(c Cache) Cache {
	if c == nil {
		return noopCache{}
	}
	return c
}

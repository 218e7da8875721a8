package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ヘルス状態
const (
	StatusOK        = "ok"
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DBPinger はデータベースの疎通確認（*sqlx.DB が満たす）
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger はキャッシュの疎通確認
type CachePinger interface {
	Ping(ctx context.Context) bool
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	db      DBPinger
	cache   CachePinger
	version string
	timeout time.Duration
}

// NewHealthHandler はHealthHandlerを作成する
// db, cache が nil の場合、その項目は詳細チェックから外れる
func NewHealthHandler(db DBPinger, cache CachePinger, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version, timeout: 2 * time.Second}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check はプロセスの生存確認
// @Summary ヘルスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    StatusOK,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Detailed は依存先の疎通を確認する
// DB障害は unhealthy (503)、キャッシュ障害は degraded (200)
// @Summary 詳細ヘルスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) Detailed(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Checks:    map[string]string{},
	}
	code := http.StatusOK

	if h.cache != nil {
		if h.cache.Ping(ctx) {
			resp.Checks["cache"] = StatusOK
		} else {
			resp.Checks["cache"] = "error"
			resp.Status = StatusDegraded
		}
	}
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			resp.Checks["database"] = "error"
			resp.Status = StatusUnhealthy
			code = http.StatusServiceUnavailable
		} else {
			resp.Checks["database"] = StatusOK
		}
	}
	return c.JSON(code, resp)
}

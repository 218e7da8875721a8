package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-event-attendance/internal/config"
)

// MetricsBasicAuth は /metrics エンドポイント用の Basic 認証ミドルウェア
// 認証情報が未設定ならそのまま通す（ローカル開発用）
func MetricsBasicAuth(cfg config.MetricsConfig) echo.MiddlewareFunc {
	if !cfg.AuthEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	user, pass := []byte(cfg.User), []byte(cfg.Password)
	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		// 両方とも比較して所要時間を揃える
		userMatch := subtle.ConstantTimeCompare([]byte(username), user) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), pass) == 1
		return userMatch && passMatch, nil
	})
}

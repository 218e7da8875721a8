package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
)

// RequestLogger はリクエストの構造化ログを出力するミドルウェア
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			err := next(c)
			// ステータスを確定させるためここでエラーハンドラーを通す
			if err != nil {
				c.Error(err)
			}

			log := logger.FromContext(c.Request().Context())
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", res.Status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}

			switch {
			case res.Status >= 500:
				log.Error("server error", fields...)
			case res.Status >= 400:
				log.Warn("client error", fields...)
			default:
				log.Info("request completed", fields...)
			}
			return nil
		}
	}
}

// RequestIDMiddleware はリクエストIDを付与する
// クライアントが X-Request-ID を送ってきた場合はそれを引き継ぐ。
// request_id 付きのロガーを context に載せるので、以降は logger.FromContext で使える
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			l := logger.With(zap.String("request_id", requestID))
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), l)))
			return next(c)
		}
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-event-attendance/internal/config"
)

// SetupMiddleware は全ルート共通のミドルウェアを順に登録する
// RequestID → ログ → リカバリーの順なので、パニックも request_id 付きで記録される
func SetupMiddleware(e *echo.Echo, cfg config.ServerConfig) {
	e.Use(RequestIDMiddleware())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())

	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{echo.GET, echo.HEAD, echo.PUT, echo.POST, echo.DELETE},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
}

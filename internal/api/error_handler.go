package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/domain/apperr"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

const internalErrorMessage = "内部サーバーエラー"

// CustomHTTPErrorHandler はカスタムエラーハンドラー
//
//   - *apperr.Error: 種別に対応するステータスとメッセージ（Warn）
//   - *echo.HTTPError: そのまま
//   - それ以外: 500 と固定メッセージ（Error、スタックトレース付き）
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := logger.FromContext(c.Request().Context())
	resp := ErrorResponse{Code: http.StatusInternalServerError, Error: internalErrorMessage}
	fields := []zap.Field{
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.Error(err),
	}

	var he *echo.HTTPError
	if ae, ok := apperr.As(err); ok {
		resp.Code = ae.Status()
		resp.Error = ae.Message
		resp.Kind = ae.Kind.String()
		log.Warn("業務エラー", append(fields, zap.String("kind", resp.Kind))...)
	} else if errors.As(err, &he) {
		resp.Code = he.Code
		if m, ok := he.Message.(string); ok {
			resp.Error = m
		} else {
			resp.Error = http.StatusText(he.Code)
		}
		if he.Code >= 500 {
			log.Error("サーバーエラー", fields...)
		}
	} else {
		// 詳細はログにだけ残す
		log.Error("予期しないエラー", append(fields, zap.Stack("stack"))...)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Code)
	} else {
		err = c.JSON(resp.Code, resp)
	}
	if err != nil {
		log.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

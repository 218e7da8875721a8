package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// pathID はパスパラメータを正の整数IDとして読み取る
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "IDの形式が不正です: "+name)
	}
	return id, nil
}

// queryInt はクエリパラメータを整数として読み取る。未指定なら def
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "クエリパラメータの形式が不正です: "+name)
	}
	return v, nil
}

// bindAndValidate はリクエストボディを読み取り検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	return c.Validate(req)
}

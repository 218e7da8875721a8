package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
)

type AttendanceHandler struct {
	attendanceService AttendanceServiceInterface
}

func NewAttendanceHandler(attendanceService AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

type RegisterAttendanceRequest struct {
	EventID       int64 `json:"event_id" validate:"required,gt=0" example:"1"`
	ParticipantID int64 `json:"participant_id" validate:"required,gt=0" example:"1"`
}

type AttendanceResponse struct {
	ID            int64  `json:"id" example:"1"`
	EventID       int64  `json:"event_id" example:"1"`
	ParticipantID int64  `json:"participant_id" example:"1"`
	RegisteredAt  string `json:"registered_at" example:"2026-10-01T10:00:00+09:00"`
}

func toAttendanceResponse(a *attendance.Attendance) *AttendanceResponse {
	return &AttendanceResponse{
		ID:            a.ID,
		EventID:       a.EventID,
		ParticipantID: a.ParticipantID,
		RegisteredAt:  a.RegisteredAt.Format(time.RFC3339),
	}
}

// Register godoc
// @Summary 参加者をイベントに登録
// @Tags attendances
// @Accept json
// @Produce json
// @Param request body RegisterAttendanceRequest true "登録情報"
// @Success 201 {object} AttendanceResponse
// @Failure 400 {object} api.ErrorResponse "定員超過"
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "登録済み"
// @Router /attendances [post]
func (h *AttendanceHandler) Register(c echo.Context) error {
	var req RegisterAttendanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.attendanceService.RegisterAttendance(c.Request().Context(), req.EventID, req.ParticipantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAttendanceResponse(a))
}

// GetByID godoc
// @Summary 参加登録を取得
// @Tags attendances
// @Produce json
// @Param id path int true "参加登録ID"
// @Success 200 {object} AttendanceResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /attendances/{id} [get]
func (h *AttendanceHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.attendanceService.GetAttendance(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAttendanceResponse(a))
}

// Cancel godoc
// @Summary 参加登録を取り消す
// @Tags attendances
// @Param id path int true "参加登録ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /attendances/{id} [delete]
func (h *AttendanceHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.attendanceService.CancelAttendance(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByEvent godoc
// @Summary イベントの参加者一覧
// @Tags attendances
// @Produce json
// @Param event_id path int true "イベントID"
// @Success 200 {array} attendance.Detail
// @Failure 404 {object} api.ErrorResponse
// @Router /attendances/event/{event_id} [get]
func (h *AttendanceHandler) ListByEvent(c echo.Context) error {
	eventID, err := pathID(c, "event_id")
	if err != nil {
		return err
	}
	details, err := h.attendanceService.GetEventAttendances(c.Request().Context(), eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

// ListByParticipant godoc
// @Summary 参加者の登録イベント一覧
// @Tags attendances
// @Produce json
// @Param participant_id path int true "参加者ID"
// @Success 200 {array} attendance.Detail
// @Failure 404 {object} api.ErrorResponse
// @Router /attendances/participant/{participant_id} [get]
func (h *AttendanceHandler) ListByParticipant(c echo.Context) error {
	participantID, err := pathID(c, "participant_id")
	if err != nil {
		return err
	}
	details, err := h.attendanceService.GetParticipantAttendances(c.Request().Context(), participantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

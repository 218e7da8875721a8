package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-attendance/internal/application"
	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=200" example:"Go Conference 2026"`
	Description string    `json:"description" example:"年次カンファレンス"`
	Location    string    `json:"location" validate:"required,min=3,max=300" example:"東京国際フォーラム"`
	Date        time.Time `json:"date" validate:"required" example:"2026-12-01T10:00:00+09:00"`
	Capacity    int       `json:"capacity" validate:"required,gt=0" example:"300"`
}

// UpdateEventRequest は部分更新。省略した項目は変更しない
type UpdateEventRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" validate:"omitempty,min=3,max=300"`
	Date        *time.Time `json:"date"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gt=0"`
}

type EventResponse struct {
	ID                int64  `json:"id" example:"1"`
	Name              string `json:"name" example:"Go Conference 2026"`
	Description       string `json:"description" example:"年次カンファレンス"`
	Location          string `json:"location" example:"東京国際フォーラム"`
	Date              string `json:"date" example:"2026-12-01T10:00:00+09:00"`
	Capacity          int    `json:"capacity" example:"300"`
	AvailableCapacity *int   `json:"available_capacity,omitempty" example:"120"`
	CreatedAt         string `json:"created_at" example:"2026-10-01T10:00:00+09:00"`
	UpdatedAt         string `json:"updated_at" example:"2026-10-01T10:00:00+09:00"`
}

type CapacityResponse struct {
	EventID           int64 `json:"event_id"`
	AvailableCapacity int   `json:"available_capacity"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date.Format(time.RFC3339),
		Capacity:    e.Capacity,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary イベントを作成
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得（残り枠つき）
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	e, err := h.eventService.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	available, err := h.eventService.GetAvailableCapacity(ctx, id)
	if err != nil {
		return err
	}

	resp := toEventResponse(e)
	resp.AvailableCapacity = &available
	return c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary イベント一覧を取得
// @Tags events
// @Produce json
// @Param skip query int false "スキップ件数" default(0)
// @Param limit query int false "取得件数" default(100)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", application.DefaultListLimit)
	if err != nil {
		return err
	}

	events, err := h.eventService.ListEvents(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary イベントを部分更新
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "イベントID"
// @Param request body UpdateEventRequest true "変更する項目"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	e, err := h.eventService.UpdateEvent(c.Request().Context(), id, application.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除（参加登録も削除される）
// @Tags events
// @Param id path int true "イベントID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.eventService.DeleteEvent(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Statistics godoc
// @Summary イベントの統計を取得
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} event.Statistics
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/statistics [get]
func (h *EventHandler) Statistics(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	stats, err := h.eventService.GetEventStatistics(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Capacity godoc
// @Summary イベントの残り枠を取得
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} CapacityResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/capacity [get]
func (h *EventHandler) Capacity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	available, err := h.eventService.GetAvailableCapacity(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CapacityResponse{EventID: id, AvailableCapacity: available})
}

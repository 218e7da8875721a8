package handler

import "github.com/labstack/echo/v4"

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Event       *EventHandler
	Participant *ParticipantHandler
	Attendance  *AttendanceHandler
	Health      *HealthHandler
}

// RegisterRoutes はルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)
	e.GET("/health/detailed", h.Health.Detailed)

	v1 := e.Group("/api/v1")

	events := v1.Group("/events")
	events.POST("", h.Event.Create)
	events.GET("", h.Event.List)
	events.GET("/:id", h.Event.GetByID)
	events.PUT("/:id", h.Event.Update)
	events.DELETE("/:id", h.Event.Delete)
	events.GET("/:id/statistics", h.Event.Statistics)
	events.GET("/:id/capacity", h.Event.Capacity)

	participants := v1.Group("/participants")
	participants.POST("", h.Participant.Create)
	participants.GET("", h.Participant.List)
	participants.GET("/by-email", h.Participant.GetByEmail)
	participants.GET("/:id", h.Participant.GetByID)
	participants.PUT("/:id", h.Participant.Update)
	participants.DELETE("/:id", h.Participant.Delete)

	attendances := v1.Group("/attendances")
	attendances.POST("", h.Attendance.Register)
	attendances.GET("/:id", h.Attendance.GetByID)
	attendances.DELETE("/:id", h.Attendance.Cancel)
	attendances.GET("/event/:event_id", h.Attendance.ListByEvent)
	attendances.GET("/participant/:participant_id", h.Attendance.ListByParticipant)
}

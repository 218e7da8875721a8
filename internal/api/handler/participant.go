package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-attendance/internal/application"
	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
)

type ParticipantHandler struct {
	participantService ParticipantServiceInterface
}

func NewParticipantHandler(participantService ParticipantServiceInterface) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService}
}

type CreateParticipantRequest struct {
	Name  string `json:"name" validate:"required,min=3,max=200" example:"山田 太郎"`
	Email string `json:"email" validate:"required,email" example:"taro@example.com"`
	Phone string `json:"phone" validate:"omitempty,phone" example:"+81 90-1234-5678"`
}

// UpdateParticipantRequest は部分更新。省略した項目は変更しない
type UpdateParticipantRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,phone"`
}

type ParticipantResponse struct {
	ID        int64  `json:"id" example:"1"`
	Name      string `json:"name" example:"山田 太郎"`
	Email     string `json:"email" example:"taro@example.com"`
	Phone     string `json:"phone,omitempty" example:"+81 90-1234-5678"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toParticipantResponse(p *participant.Participant) *ParticipantResponse {
	return &ParticipantResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary 参加者を登録
// @Tags participants
// @Accept json
// @Produce json
// @Param request body CreateParticipantRequest true "参加者情報"
// @Success 201 {object} ParticipantResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /participants [post]
func (h *ParticipantHandler) Create(c echo.Context) error {
	var req CreateParticipantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.participantService.CreateParticipant(c.Request().Context(), application.CreateParticipantInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toParticipantResponse(p))
}

// GetByID godoc
// @Summary 参加者を取得
// @Tags participants
// @Produce json
// @Param id path int true "参加者ID"
// @Success 200 {object} ParticipantResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /participants/{id} [get]
func (h *ParticipantHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.participantService.GetParticipant(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipantResponse(p))
}

// GetByEmail godoc
// @Summary メールアドレスで参加者を検索
// @Tags participants
// @Produce json
// @Param email query string true "メールアドレス"
// @Success 200 {object} ParticipantResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /participants/by-email [get]
func (h *ParticipantHandler) GetByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email を指定してください")
	}
	p, err := h.participantService.GetParticipantByEmail(c.Request().Context(), email)
	if err != nil {
		return err
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "該当する参加者がいません")
	}
	return c.JSON(http.StatusOK, toParticipantResponse(p))
}

// List godoc
// @Summary 参加者一覧を取得
// @Tags participants
// @Produce json
// @Param skip query int false "スキップ件数" default(0)
// @Param limit query int false "取得件数" default(100)
// @Success 200 {array} ParticipantResponse
// @Router /participants [get]
func (h *ParticipantHandler) List(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", application.DefaultListLimit)
	if err != nil {
		return err
	}

	participants, err := h.participantService.ListParticipants(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}

	responses := make([]*ParticipantResponse, len(participants))
	for i, p := range participants {
		responses[i] = toParticipantResponse(p)
	}
	return c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary 参加者を部分更新
// @Tags participants
// @Accept json
// @Produce json
// @Param id path int true "参加者ID"
// @Param request body UpdateParticipantRequest true "変更する項目"
// @Success 200 {object} ParticipantResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /participants/{id} [put]
func (h *ParticipantHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateParticipantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.participantService.UpdateParticipant(c.Request().Context(), id, application.UpdateParticipantInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipantResponse(p))
}

// Delete godoc
// @Summary 参加者を削除（参加登録も削除される）
// @Tags participants
// @Param id path int true "参加者ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /participants/{id} [delete]
func (h *ParticipantHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.participantService.DeleteParticipant(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

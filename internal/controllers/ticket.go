package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/services"
	"repair-system/pkg/utils"
)

type TicketController struct {
	ticketService   services.TicketServiceInterface
	workflowService services.WorkflowServiceInterface
	logger          *zap.Logger
}

func NewTicketController(
	ticketService services.TicketServiceInterface,
	workflowService services.WorkflowServiceInterface,
	logger *zap.Logger,
) *TicketController {
	return &TicketController{
		ticketService:   ticketService,
		workflowService: workflowService,
		logger:          logger,
	}
}

// CreateTicket — публичная точка приёма заявок: авторизация не требуется.
func (c *TicketController) CreateTicket(ctx echo.Context) error {
	var payload dto.CreateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.CreateTicket(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("ошибка создания заявки", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно создана", http.StatusCreated)
}

func (c *TicketController) GetTicket(ctx echo.Context) error {
	res, err := c.ticketService.GetTicket(ctx.Request().Context(), ctx.Param("ticket_id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка получена", http.StatusOK)
}

// GetPublicStatus — публичная проверка статуса по номеру заявки,
// возвращается усечённый набор полей.
func (c *TicketController) GetPublicStatus(ctx echo.Context) error {
	res, err := c.ticketService.GetPublicStatus(ctx.Request().Context(), ctx.Param("ticket_id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус заявки получен", http.StatusOK)
}

func (c *TicketController) GetTickets(ctx echo.Context) error {
	res, err := c.ticketService.ListTickets(ctx.Request().Context())
	if err != nil {
		c.logger.Error("ошибка получения списка заявок", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявки успешно получены", http.StatusOK, uint64(len(res)))
}

func (c *TicketController) UpdateTicket(ctx echo.Context) error {
	var payload dto.UpdateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.UpdateTicket(ctx.Request().Context(), ctx.Param("ticket_id"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка обновлена", http.StatusOK)
}

func (c *TicketController) TransitionStatus(ctx echo.Context) error {
	var payload dto.TransitionStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.workflowService.TransitionStatus(ctx.Request().Context(), ctx.Param("ticket_id"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус заявки изменён", http.StatusOK)
}

func (c *TicketController) ArchiveTicket(ctx echo.Context) error {
	if err := c.ticketService.ArchiveTicket(ctx.Request().Context(), ctx.Param("ticket_id")); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Заявка перемещена в архив", http.StatusOK)
}

func (c *TicketController) GetTicketHistory(ctx echo.Context) error {
	res, err := c.ticketService.GetTicketHistory(ctx.Request().Context(), ctx.Param("ticket_id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "История заявки получена", http.StatusOK)
}

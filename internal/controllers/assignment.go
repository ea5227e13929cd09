package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/services"
	"repair-system/pkg/utils"
)

type AssignmentController struct {
	assignmentService services.AssignmentServiceInterface
	logger            *zap.Logger
}

func NewAssignmentController(assignmentService services.AssignmentServiceInterface, logger *zap.Logger) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService, logger: logger}
}

func (c *AssignmentController) AssignMaster(ctx echo.Context) error {
	var payload dto.AssignMasterDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.assignmentService.AssignMaster(ctx.Request().Context(), ctx.Param("ticket_id"), payload)
	if err != nil {
		c.logger.Error("ошибка назначения мастера", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Мастер назначен", http.StatusOK)
}

func (c *AssignmentController) UnassignMaster(ctx echo.Context) error {
	var payload dto.UnassignMasterDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.assignmentService.UnassignMaster(ctx.Request().Context(), ctx.Param("ticket_id"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Мастер снят с заявки", http.StatusOK)
}

func (c *AssignmentController) GetAvailableMasters(ctx echo.Context) error {
	res, err := c.assignmentService.ListAvailableMasters(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Доступные мастера получены", http.StatusOK, uint64(len(res)))
}

func (c *AssignmentController) GetMastersDashboard(ctx echo.Context) error {
	res, err := c.assignmentService.GetMastersDashboard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Сводка по мастерам получена", http.StatusOK, uint64(len(res)))
}

func (c *AssignmentController) GetMasterWorkload(ctx echo.Context) error {
	masterID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректный идентификатор мастера"))
	}

	res, err := c.assignmentService.GetMasterWorkload(ctx.Request().Context(), masterID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Загрузка мастера получена", http.StatusOK)
}

func (c *AssignmentController) SetAvailability(ctx echo.Context) error {
	masterID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректный идентификатор мастера"))
	}

	var payload dto.SetAvailabilityDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}

	if err := c.assignmentService.SetAvailability(ctx.Request().Context(), masterID, payload.IsAvailable); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Доступность мастера обновлена", http.StatusOK)
}

package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/services"
	"repair-system/pkg/utils"
)

type ReportController struct {
	ticketService services.TicketServiceInterface
	logger        *zap.Logger
}

func NewReportController(ticketService services.TicketServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{ticketService: ticketService, logger: logger}
}

// GetRegister выгружает реестр активных заявок. По умолчанию JSON,
// ?format=xlsx отдаёт файл.
func (c *ReportController) GetRegister(ctx echo.Context) error {
	tickets, err := c.ticketService.ListTickets(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if ctx.QueryParam("format") == "xlsx" {
		return c.respondWithXLSX(ctx, tickets)
	}
	return utils.SuccessResponse(ctx, tickets, "Реестр заявок сформирован", http.StatusOK, uint64(len(tickets)))
}

var registerHeaders = []string{
	"Номер", "Клиент", "Телефон", "Устройство", "Бренд", "Модель",
	"Проблема", "Статус", "Приоритет", "Мастер", "Оценка стоимости",
	"Итоговая стоимость", "Создана", "Завершена",
}

func registerRow(t dto.TicketDTO) []interface{} {
	costOrEmpty := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%.2f", *v)
	}

	return []interface{}{
		t.TicketID, t.ClientName, t.ClientPhone, t.DeviceType, t.Brand, t.Model,
		t.ProblemDescription, t.Status, t.Priority, utils.SafeDeref(t.MasterName),
		costOrEmpty(t.EstimatedCost), costOrEmpty(t.FinalCost),
		t.CreatedAt, utils.SafeDeref(t.ActualCompletion),
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, tickets []dto.TicketDTO) error {
	f := excelize.NewFile()
	sheet := "Реестр заявок"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &registerHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "N1", style)

	for i, t := range tickets {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := registerRow(t)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "C", 20)
	f.SetColWidth(sheet, "G", "G", 40)
	f.SetColWidth(sheet, "J", "J", 25)
	f.SetColWidth(sheet, "M", "N", 20)

	fileName := fmt.Sprintf("register_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, ctrl *controllers.ReportController) {
	secureGroup.GET("/reports/register", ctrl.GetRegister)
}

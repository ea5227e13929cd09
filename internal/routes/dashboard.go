package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
)

func runDashboardRouter(secureGroup *echo.Group, ctrl *controllers.DashboardController) {
	{
		secureGroup.GET("/dashboard/stats", ctrl.GetStats)
		secureGroup.GET("/dashboard/chart", ctrl.GetWeeklyChart)
	}
}

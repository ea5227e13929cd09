package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, ctrl *controllers.AuthController) {
	{
		api.POST("/auth/login", ctrl.Login)
		api.POST("/auth/refresh", ctrl.Refresh)
		secureGroup.POST("/auth/logout", ctrl.Logout)
		secureGroup.GET("/auth/me", ctrl.Me)
	}
}

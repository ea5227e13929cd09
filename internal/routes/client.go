package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
	"repair-system/pkg/constants"
	"repair-system/pkg/middleware"
)

func runClientRouter(secureGroup *echo.Group, ctrl *controllers.ClientController, authMW *middleware.AuthMiddleware) {
	adminOnly := authMW.RequireRoles(constants.RoleAdmin, constants.RoleDirector)
	{
		secureGroup.GET("/clients/search", ctrl.SearchClients)
		secureGroup.GET("/clients/:id", ctrl.GetClient)
		secureGroup.PUT("/clients/:id", ctrl.UpdateClient)
		secureGroup.DELETE("/clients/:id", ctrl.DeleteClient, adminOnly)
	}
}

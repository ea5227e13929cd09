package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
	"repair-system/pkg/constants"
	"repair-system/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, ctrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	adminOnly := authMW.RequireRoles(constants.RoleAdmin, constants.RoleDirector)
	{
		secureGroup.POST("/users", ctrl.CreateUser, adminOnly)
		secureGroup.GET("/users/:id", ctrl.GetUser)
	}
}

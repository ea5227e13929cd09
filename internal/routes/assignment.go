package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
	"repair-system/pkg/constants"
	"repair-system/pkg/middleware"
)

func runAssignmentRouter(secureGroup *echo.Group, ctrl *controllers.AssignmentController, authMW *middleware.AuthMiddleware) {
	// Назначение и снятие мастера доступно только управляющим ролям.
	assignRoles := authMW.Require(constants.CanAssignMasters)
	{
		secureGroup.POST("/tickets/:ticket_id/assign", ctrl.AssignMaster, assignRoles)
		secureGroup.POST("/tickets/:ticket_id/unassign", ctrl.UnassignMaster, assignRoles)
		secureGroup.GET("/masters", ctrl.GetAvailableMasters)
		secureGroup.GET("/masters/dashboard", ctrl.GetMastersDashboard, assignRoles)
		secureGroup.GET("/masters/:id/workload", ctrl.GetMasterWorkload)
		secureGroup.PUT("/masters/:id/availability", ctrl.SetAvailability, assignRoles)
	}
}

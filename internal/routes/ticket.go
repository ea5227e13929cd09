package routes

import (
	"github.com/labstack/echo/v4"

	"repair-system/internal/controllers"
	"repair-system/pkg/middleware"
)

func runTicketRouter(api *echo.Group, secureGroup *echo.Group, ctrl *controllers.TicketController, authMW *middleware.AuthMiddleware) {
	// Приём заявки и проверка статуса открыты без авторизации. Если
	// заявку заводит сотрудник, его id попадает в created_by.
	api.POST("/tickets", ctrl.CreateTicket, authMW.OptionalAuth)
	api.GET("/tickets/:ticket_id/status", ctrl.GetPublicStatus)

	{
		secureGroup.GET("/tickets", ctrl.GetTickets)
		secureGroup.GET("/tickets/:ticket_id", ctrl.GetTicket)
		secureGroup.PUT("/tickets/:ticket_id", ctrl.UpdateTicket)
		secureGroup.POST("/tickets/:ticket_id/status", ctrl.TransitionStatus)
		secureGroup.DELETE("/tickets/:ticket_id", ctrl.ArchiveTicket)
		secureGroup.GET("/tickets/:ticket_id/history", ctrl.GetTicketHistory)
	}
}

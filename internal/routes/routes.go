package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repair-system/internal/controllers"
	"repair-system/internal/repositories"
	"repair-system/internal/services"
	"repair-system/pkg/config"
	"repair-system/pkg/middleware"
	"repair-system/pkg/service"
)

type Loggers struct {
	Main       *zap.Logger
	Auth       *zap.Logger
	Ticket     *zap.Logger
	Assignment *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: создание маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	txManager := repositories.NewTxManager(dbConn)

	// --- РЕПОЗИТОРИИ ---
	ticketRepo := repositories.NewTicketRepository(dbConn)
	clientRepo := repositories.NewClientRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	statusHistoryRepo := repositories.NewStatusHistoryRepository(dbConn)
	assignmentRepo := repositories.NewAssignmentRepository(dbConn)
	dashboardRepo := repositories.NewDashboardRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	ticketService := services.NewTicketService(txManager, ticketRepo, clientRepo, statusHistoryRepo, assignmentRepo, loggers.Ticket)
	workflowService := services.NewWorkflowService(txManager, ticketRepo, statusHistoryRepo, assignmentRepo, loggers.Ticket)
	assignmentService := services.NewAssignmentService(txManager, ticketRepo, userRepo, assignmentRepo, loggers.Assignment)
	dashboardService := services.NewDashboardService(dashboardRepo, loggers.Main)
	clientService := services.NewClientService(clientRepo, loggers.Main)
	userService := services.NewUserService(userRepo, loggers.Main)
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, &cfg.Auth, loggers.Auth)

	// --- КОНТРОЛЛЕРЫ ---
	ticketCtrl := controllers.NewTicketController(ticketService, workflowService, loggers.Ticket)
	assignmentCtrl := controllers.NewAssignmentController(assignmentService, loggers.Assignment)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, loggers.Main)
	clientCtrl := controllers.NewClientController(clientService, loggers.Main)
	userCtrl := controllers.NewUserController(userService, loggers.Main)
	authCtrl := controllers.NewAuthController(authService, loggers.Auth)
	reportCtrl := controllers.NewReportController(ticketService, loggers.Main)

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authCtrl)
	runTicketRouter(api, secureGroup, ticketCtrl, authMW)
	runAssignmentRouter(secureGroup, assignmentCtrl, authMW)
	runDashboardRouter(secureGroup, dashboardCtrl)
	runClientRouter(secureGroup, clientCtrl, authMW)
	runUserRouter(secureGroup, userCtrl, authMW)
	runReportRouter(secureGroup, reportCtrl)

	loggers.Main.Info("InitRouter: маршруты созданы")
}

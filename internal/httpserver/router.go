package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"planboard/internal/handler"
	"planboard/pkg/mq"
	"planboard/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	planHandler *handler.PlanHandler,
	taskHandler *handler.TaskHandler,
	notificationHandler *handler.NotificationHandler,
	userHandler *handler.UserHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
) *Router {
	r := gin.Default()

	r.Use(RequestLogMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		plans := auth.Group("/plans")
		{
			plans.POST("", RequirePermission(rbac.PermissionCreatePlan, logger), planHandler.CreatePlan)
			plans.GET("", RequirePermission(rbac.PermissionReadPlan, logger), planHandler.GetPlans)
			plans.GET("/:id", RequirePermission(rbac.PermissionReadPlan, logger), planHandler.GetPlanByID)
			plans.PUT("/:id", RequirePermission(rbac.PermissionUpdatePlan, logger), planHandler.UpdatePlan)
			plans.PUT("/:id/status", RequirePermission(rbac.PermissionPlanStatus, logger), planHandler.UpdatePlanStatus)
			plans.DELETE("/:id", RequirePermission(rbac.PermissionDeletePlan, logger), planHandler.DeletePlan)
		}

		tasks := auth.Group("/tasks")
		{
			tasks.POST("", RequirePermission(rbac.PermissionCreateTask, logger), taskHandler.CreateTask)
			tasks.GET("", RequirePermission(rbac.PermissionReadTask, logger), taskHandler.GetTasks)
			tasks.GET("/:id", RequirePermission(rbac.PermissionReadTask, logger), taskHandler.GetTaskByID)
			tasks.PUT("/:id", RequirePermission(rbac.PermissionUpdateTask, logger), taskHandler.UpdateTask)
			tasks.PUT("/:id/status", RequirePermission(rbac.PermissionTaskStatus, logger), taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id/todo", RequirePermission(rbac.PermissionTaskChecklist, logger), taskHandler.UpdateTaskChecklist)
			tasks.DELETE("/:id", RequirePermission(rbac.PermissionDeleteTask, logger), taskHandler.DeleteTask)
		}

		auth.GET("/dashboard", RequirePermission(rbac.PermissionDashboard, logger), taskHandler.Dashboard)
		auth.GET("/dashboard/me", RequirePermission(rbac.PermissionUserDashboard, logger), taskHandler.UserDashboard)
		auth.GET("/notifications", RequirePermission(rbac.PermissionNotifications, logger), notificationHandler.ListMine)

		auth.GET("/users", RequirePermission(rbac.PermissionListUsers, logger), userHandler.ListUsers)
		auth.GET("/users/:id", userHandler.GetUserByID)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}

package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/skilltrail-backend/internal/http/handlers"
	"github.com/yungbote/skilltrail-backend/internal/http/middleware"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log                 *logger.Logger
	ServiceName         string
	AuthMiddleware      *middleware.AuthMiddleware
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	LearningPathHandler *handlers.LearningPathHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.TraceContext())
	router.Use(middleware.RequestLog(cfg.Log))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)

	api := protected.Group("/api")
	{
		api.POST("/learning-path", cfg.LearningPathHandler.CreatePlan)
		api.GET("/learning-path", cfg.LearningPathHandler.GetActivePlan)
		api.DELETE("/learning-path", cfg.LearningPathHandler.DeactivatePlan)
		api.GET("/learning-path/skill/:skillName", cfg.LearningPathHandler.FindSkillByName)
		api.POST("/learning-path/skills/:skillId/projects", cfg.LearningPathHandler.AssignProjects)
		api.PUT("/learning-path/skills/:skillId/projects/:projectId", cfg.LearningPathHandler.UpdateProjectStatus)
	}

	return router
}

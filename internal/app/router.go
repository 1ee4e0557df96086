package app

import (
	"skilljumper_backend/docs"
	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/middleware"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/me", c.auth.Me)

		authGroup.GET("/profile", c.user.GetProfile)
		authGroup.PUT("/profile", c.user.UpdateProfile)
		authGroup.PUT("/profile/skills", c.user.UpdateSkillLevel)

		authGroup.GET("/quests", c.quest.ListQuests)
		authGroup.GET("/quests/:id", c.quest.GetQuest)
		authGroup.POST("/quests/select", c.quest.SelectQuest)
		authGroup.POST("/quests/feedback", c.quest.SubmitFeedback)

		authGroup.GET("/attempts", c.quest.GetAttempts)
		authGroup.GET("/learning-model", c.quest.GetLearningModel)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/quests", c.quest.CreateQuest)
		admin.PUT("/quests/:id", c.quest.UpdateQuest)
		admin.POST("/quests/:id/materials", c.quest.UploadMaterial)
	}
}

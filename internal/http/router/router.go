package router

import (
	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/internal/cache"
	"pken.app/survey-gateway/internal/http/handler"
	"pken.app/survey-gateway/internal/service"
)

type RouterConfig struct {
	Health       handler.HealthInfo
	HistoryCache cache.HistoryCache
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(cfg.Health, cfg.HistoryCache)
	router.GET("/health", healthHandler.Check)
	router.GET("/api/health", healthHandler.Check)

	wp := router.Group("/api/wp")
	{
		userHandler := handler.NewUserHandler(services.Users())
		UserRouter(wp, userHandler)

		surveyHandler := handler.NewSurveyHandler(services.Surveys())
		SurveyRouter(wp, surveyHandler)
	}
}

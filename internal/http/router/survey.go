package router

import (
	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/internal/http/handler"
)

func SurveyRouter(rg *gin.RouterGroup, h *handler.SurveyHandler) {
	rg.GET("/survey-history", h.History)
	rg.GET("/survey-detail", h.Detail)
	rg.POST("/survey-reply", h.SubmitReply)
}

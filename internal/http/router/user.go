package router

import (
	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/internal/http/handler"
)

func UserRouter(rg *gin.RouterGroup, h *handler.UserHandler) {
	rg.POST("/me", h.Me)
	rg.POST("/register", h.Register)
}

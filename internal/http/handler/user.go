package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/common/logger"
	"pken.app/survey-gateway/internal/http/dto"
	"pken.app/survey-gateway/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid me request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "line_id is required"})
		return
	}

	user, err := h.userService.Me(ctx, req.LineID)
	if err != nil {
		respondError(c, err, "failed to look up user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid register request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{LineID: &req.LineID})

	result, err := h.userService.Register(ctx, req.ToWordPress())
	if err != nil {
		respondError(c, err, "failed to register user")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

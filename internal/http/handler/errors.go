package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/internal/service"
	"pken.app/survey-gateway/internal/wordpress"
)

// respondError maps service errors to a JSON error response. WordPress
// rejections keep their status and message; everything upstream-related
// that is not the caller's fault becomes 502.
func respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	var apiErr *wordpress.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.IsClientError():
		body := gin.H{"error": apiErr.Message}
		if apiErr.Code != "" {
			body["code"] = apiErr.Code
		}
		if apiErr.Field != "" {
			body["field"] = apiErr.Field
		}
		c.JSON(apiErr.StatusCode, body)
	case apiErr != nil,
		errors.Is(err, wordpress.ErrUnavailable),
		errors.Is(err, service.ErrMalformedHistory):
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

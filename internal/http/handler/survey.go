package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/internal/http/dto"
	"pken.app/survey-gateway/internal/service"
)

type SurveyHandler struct {
	surveyService service.SurveyService
}

func NewSurveyHandler(surveyService service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

func (h *SurveyHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		slog.WarnContext(ctx, "invalid history query", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	items, err := h.surveyService.History(ctx, q.UserID)
	if err != nil {
		respondError(c, err, "failed to fetch survey history")
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryResponse(items))
}

func (h *SurveyHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.DetailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		slog.WarnContext(ctx, "invalid detail query", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and survey_id are required"})
		return
	}

	detail, err := h.surveyService.Detail(ctx, q.UserID, q.SurveyID)
	if err != nil {
		respondError(c, err, "failed to fetch survey detail")
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyDetailResponse(detail))
}

// SubmitReply forwards the form payload as is; only user_id and post_id are checked here.
func (h *SurveyHandler) SubmitReply(c *gin.Context) {
	ctx := c.Request.Context()

	var payload map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		slog.WarnContext(ctx, "invalid reply body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	result, err := h.surveyService.SubmitReply(ctx, payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReply) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err, "failed to submit survey reply")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

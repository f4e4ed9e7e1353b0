package dto

import (
	"pken.app/survey-gateway/internal/service"
	"pken.app/survey-gateway/internal/survey"
	"pken.app/survey-gateway/internal/wordpress"
)

type HistoryQuery struct {
	UserID int64 `form:"user_id" binding:"required,min=1"`
}

type DetailQuery struct {
	UserID   int64  `form:"user_id" binding:"required,min=1"`
	SurveyID string `form:"survey_id" binding:"required,max=64"`
}

// HistoryItemResponse is the upstream record with status and reply_date
// set from the resolver. Unknown upstream keys pass through.
type HistoryItemResponse map[string]any

func ToHistoryResponse(items []survey.HistoryItem) []HistoryItemResponse {
	out := make([]HistoryItemResponse, len(items))
	for i, item := range items {
		resp := make(HistoryItemResponse, len(item.Record.Fields)+3)
		for k, v := range item.Record.Fields {
			resp[k] = v
		}
		resp["status"] = item.Status
		resp["reply_date"] = item.ReplyDate
		if item.ReplyDate != nil {
			resp["reply_date_display"] = survey.FormatReplyDate(*item.ReplyDate)
		}
		out[i] = resp
	}
	return out
}

type SurveyDetailResponse struct {
	*wordpress.SurveyDetail
	Status           survey.Status `json:"status"`
	ReplyDate        *string       `json:"reply_date"`
	ReplyDateDisplay *string       `json:"reply_date_display,omitempty"`
}

func ToSurveyDetailResponse(d *service.SurveyDetail) *SurveyDetailResponse {
	resp := &SurveyDetailResponse{
		SurveyDetail: d.SurveyDetail,
		Status:       d.Status,
		ReplyDate:    d.ReplyDate,
	}
	if d.ReplyDate != nil {
		display := survey.FormatReplyDate(*d.ReplyDate)
		resp.ReplyDateDisplay = &display
	}
	return resp
}

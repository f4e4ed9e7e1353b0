package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"pken.app/survey-gateway/common/logger"
	"pken.app/survey-gateway/internal/cache"
	"pken.app/survey-gateway/internal/survey"
	"pken.app/survey-gateway/internal/wordpress"
)

type SurveyService interface {
	History(ctx context.Context, userID int64) ([]survey.HistoryItem, error)
	Detail(ctx context.Context, userID int64, surveyID string) (*SurveyDetail, error)
	SubmitReply(ctx context.Context, payload map[string]any) (json.RawMessage, error)
}

// SurveyDetail is the upstream detail plus the caller's reply status.
type SurveyDetail struct {
	*wordpress.SurveyDetail
	Status    survey.Status
	ReplyDate *string
}

// replyGenerations is the number of reply generation stripes. Users share
// stripes, which at worst skips a cache write for an unrelated user.
const replyGenerations = 64

type surveyService struct {
	wp    wordpress.Client
	cache cache.HistoryCache
	group singleflight.Group

	// generations are bumped on every accepted reply. A history fetch that
	// saw a bump while running must not leave its body in the cache.
	generations [replyGenerations]atomic.Uint64
}

func NewSurveyService(wp wordpress.Client, historyCache cache.HistoryCache) SurveyService {
	return &surveyService{
		wp:    wp,
		cache: historyCache,
	}
}

func (s *surveyService) History(ctx context.Context, userID int64) ([]survey.HistoryItem, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &userID, Component: "survey.service.history"})

	records, err := s.historyRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := survey.Decorate(records)

	counts := map[survey.Status]int{}
	for _, item := range items {
		counts[item.Status]++
	}
	slog.DebugContext(ctx, "survey history resolved",
		"count", len(items),
		"answered", counts[survey.StatusAnswered],
		"unanswered", counts[survey.StatusUnanswered],
		"pending", counts[survey.StatusPending],
	)

	return items, nil
}

func (s *surveyService) historyRecords(ctx context.Context, userID int64) ([]survey.RawHistoryRecord, error) {
	body, hit, err := s.cache.Get(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "history cache read failed", "error", err)
	}
	if hit {
		records, err := survey.ParseHistory(body)
		if err == nil {
			return records, nil
		}
		slog.WarnContext(ctx, "dropping undecodable cached history", "error", err)
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			slog.WarnContext(ctx, "history cache invalidate failed", "error", err)
		}
	}

	// One upstream call per user at a time. It must outlive the caller that
	// started it; the HTTP client timeout bounds it instead.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(flightKey(userID), func() (any, error) {
		return s.fetchHistory(fetchCtx, userID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "history fetch shared with concurrent request")
	}
	return v.([]survey.RawHistoryRecord), nil
}

func flightKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *surveyService) generation(userID int64) *atomic.Uint64 {
	return &s.generations[uint64(userID)%replyGenerations]
}

func (s *surveyService) fetchHistory(ctx context.Context, userID int64) ([]survey.RawHistoryRecord, error) {
	gen := s.generation(userID)
	startGen := gen.Load()

	body, err := s.wp.SurveyHistory(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch survey history", "error", err)
		return nil, fmt.Errorf("fetching survey history: %w", err)
	}

	records, err := survey.ParseHistory(body)
	if err != nil {
		slog.ErrorContext(ctx, "survey history is not a list of records",
			"error", err,
			"body", logger.Truncate(string(body), 512),
		)
		return nil, fmt.Errorf("%w: %w", ErrMalformedHistory, err)
	}

	if gen.Load() != startGen {
		slog.DebugContext(ctx, "reply submitted during history fetch, not caching")
		return records, nil
	}
	if err := s.cache.Set(ctx, userID, body); err != nil {
		slog.WarnContext(ctx, "history cache write failed", "error", err)
	}
	// A reply may have landed between the check and the write.
	if gen.Load() != startGen {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			slog.WarnContext(ctx, "history cache invalidate failed", "error", err)
		}
	}
	return records, nil
}

func (s *surveyService) Detail(ctx context.Context, userID int64, surveyID string) (*SurveyDetail, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    &userID,
		SurveyID:  &surveyID,
		Component: "survey.service.detail",
	})

	detail, err := s.wp.SurveyDetail(ctx, userID, surveyID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch survey detail", "error", err)
		return nil, fmt.Errorf("fetching survey detail: %w", err)
	}

	item := replyItem(detail.MyReply)
	return &SurveyDetail{
		SurveyDetail: detail,
		Status:       item.Status,
		ReplyDate:    item.ReplyDate,
	}, nil
}

// replyItem resolves a detail's reply row through the history cascade. The
// row carries only the legacy answer/str fields, so those decide.
func replyItem(reply *wordpress.SurveyReply) survey.HistoryItem {
	if reply == nil {
		return survey.HistoryItem{Status: survey.StatusUnanswered}
	}
	return survey.DecorateRecord(survey.RawHistoryRecord{
		Answer: reply.Answer,
		Str:    reply.Str,
		Reply: &survey.Reply{
			ReplyCreated: reply.Created,
			ReplyUpdated: reply.Updated,
		},
	})
}

func (s *surveyService) SubmitReply(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	if !truthy(payload["user_id"]) || !truthy(payload["post_id"]) {
		return nil, ErrInvalidReply
	}

	userID, hasUserID := int64Of(payload["user_id"])
	fields := logger.LogFields{Component: "survey.service.reply"}
	if hasUserID {
		fields.UserID = &userID
	}
	ctx = logger.WithLogFields(ctx, fields)

	result, err := s.wp.SubmitReply(ctx, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to submit survey reply", "error", err, "post_id", payload["post_id"])
		return nil, fmt.Errorf("submitting survey reply: %w", err)
	}

	if hasUserID {
		// Bump before invalidating so in-flight fetches see it.
		s.generation(userID).Add(1)
		s.group.Forget(flightKey(userID))
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			slog.WarnContext(ctx, "history cache invalidate failed", "error", err)
		}
	}

	slog.InfoContext(ctx, "survey reply submitted", "post_id", payload["post_id"])
	return result, nil
}

// truthy follows the client's presence checks: nil, "", 0 and false are missing.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

func int64Of(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

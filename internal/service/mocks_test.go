package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"pken.app/survey-gateway/internal/wordpress"
)

type mockWordPress struct {
	meFn            func(ctx context.Context, lineID string) (*wordpress.User, error)
	registerFn      func(ctx context.Context, req wordpress.RegisterRequest) (json.RawMessage, error)
	surveyDetailFn  func(ctx context.Context, userID int64, surveyID string) (*wordpress.SurveyDetail, error)
	surveyHistoryFn func(ctx context.Context, userID int64) ([]byte, error)
	submitReplyFn   func(ctx context.Context, payload map[string]any) (json.RawMessage, error)

	historyCalls atomic.Int32
	replyCalls   atomic.Int32
}

func (m *mockWordPress) Me(ctx context.Context, lineID string) (*wordpress.User, error) {
	if m.meFn != nil {
		return m.meFn(ctx, lineID)
	}
	return nil, nil
}

func (m *mockWordPress) Register(ctx context.Context, req wordpress.RegisterRequest) (json.RawMessage, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockWordPress) SurveyDetail(ctx context.Context, userID int64, surveyID string) (*wordpress.SurveyDetail, error) {
	if m.surveyDetailFn != nil {
		return m.surveyDetailFn(ctx, userID, surveyID)
	}
	return &wordpress.SurveyDetail{}, nil
}

func (m *mockWordPress) SurveyHistory(ctx context.Context, userID int64) ([]byte, error) {
	m.historyCalls.Add(1)
	if m.surveyHistoryFn != nil {
		return m.surveyHistoryFn(ctx, userID)
	}
	return []byte(`[]`), nil
}

func (m *mockWordPress) SubmitReply(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	m.replyCalls.Add(1)
	if m.submitReplyFn != nil {
		return m.submitReplyFn(ctx, payload)
	}
	return json.RawMessage(`{}`), nil
}

type fakeHistoryCache struct {
	mu          sync.Mutex
	entries     map[int64][]byte
	invalidated []int64
	getErr      error
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{entries: map[int64][]byte{}}
}

func (c *fakeHistoryCache) Get(_ context.Context, userID int64) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	body, ok := c.entries[userID]
	return body, ok, nil
}

func (c *fakeHistoryCache) Set(_ context.Context, userID int64, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = body
	return nil
}

func (c *fakeHistoryCache) Invalidate(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func (c *fakeHistoryCache) Ping(context.Context) error {
	return nil
}

func (c *fakeHistoryCache) has(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[userID]
	return ok
}

func strPtr(s string) *string {
	return &s
}

package wordpress

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"pken.app/survey-gateway/common/logger"
	"pken.app/survey-gateway/core/config"
)

const (
	namespacePath   = "/wp-json/custom/v1"
	signatureHeader = "X-Signature"
	maxBodyBytes    = 4 << 20
)

// Client talks to the custom/v1 REST namespace of the survey WordPress site.
type Client interface {
	Me(ctx context.Context, lineID string) (*User, error)
	Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error)
	SurveyDetail(ctx context.Context, userID int64, surveyID string) (*SurveyDetail, error)
	// SurveyHistory returns the body undecoded; records are normalized by the caller.
	SurveyHistory(ctx context.Context, userID int64) ([]byte, error)
	SubmitReply(ctx context.Context, payload map[string]any) (json.RawMessage, error)
}

type client struct {
	baseURL    string
	secret     []byte
	httpClient *http.Client
}

func NewClient(cfg config.WordPressConfig) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(cfg config.WordPressConfig, httpClient *http.Client) Client {
	return &client{
		baseURL:    cfg.BaseURL + namespacePath,
		secret:     []byte(cfg.SharedSecret),
		httpClient: httpClient,
	}
}

func (c *client) Me(ctx context.Context, lineID string) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodPost, "/me", map[string]string{"line_id": lineID}, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/register", req, true, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) SurveyDetail(ctx context.Context, userID int64, surveyID string) (*SurveyDetail, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))
	q.Set("survey_id", surveyID)

	var detail SurveyDetail
	if err := c.doJSON(ctx, http.MethodGet, "/survey_detail?"+q.Encode(), nil, false, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *client) SurveyHistory(ctx context.Context, userID int64) ([]byte, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))
	return c.do(ctx, http.MethodGet, "/survey_history?"+q.Encode(), nil, false)
}

func (c *client) SubmitReply(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/survey_reply", payload, true, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) doJSON(ctx context.Context, method, endpoint string, in any, signed bool, out any) error {
	body, err := c.do(ctx, method, endpoint, in, signed)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w: %w", endpoint, ErrUnavailable, err)
	}
	return nil
}

func (c *client) do(ctx context.Context, method, endpoint string, in any, signed bool) ([]byte, error) {
	sc := logger.StartSpan(ctx, "wordpress."+method+" "+pathOf(endpoint), trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if signed && payload != nil {
		req.Header.Set(signatureHeader, Sign(c.secret, payload))
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "wordpress request failed", "endpoint", pathOf(endpoint), "error", err)
		return nil, fmt.Errorf("calling %s: %w: %w", pathOf(endpoint), ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("reading %s response: %w: %w", pathOf(endpoint), ErrUnavailable, err)
	}

	sc.Span().SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	slog.DebugContext(ctx, "wordpress response",
		"method", method,
		"endpoint", pathOf(endpoint),
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, body)
		sc.RecordError(apiErr)
		return nil, apiErr
	}

	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}
	switch {
	case eb.Error != "":
		apiErr.Message = eb.Error
	case eb.Message != "":
		apiErr.Message = eb.Message
	}
	apiErr.Code = eb.Code
	apiErr.Field = eb.Field
	return apiErr
}

// Sign returns the hex HMAC-SHA256 of body, as verified by the plugin.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func pathOf(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	return path
}

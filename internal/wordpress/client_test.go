package wordpress_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pken.app/survey-gateway/core/config"
	"pken.app/survey-gateway/internal/wordpress"
)

type capturedRequest struct {
	method    string
	path      string
	query     map[string]string
	body      []byte
	signature string
}

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		captured capturedRequest
		status   int
		respBody string
		client   wordpress.Client
	)

	const secret = "s3cret"

	BeforeEach(func() {
		ctx = context.Background()
		captured = capturedRequest{}
		status = http.StatusOK
		respBody = `{}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			captured = capturedRequest{
				method:    r.Method,
				path:      r.URL.Path,
				query:     map[string]string{},
				body:      body,
				signature: r.Header.Get("X-Signature"),
			}
			for k := range r.URL.Query() {
				captured.query[k] = r.URL.Query().Get(k)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		}))
		DeferCleanup(server.Close)

		client = wordpress.NewClientWithHTTP(config.WordPressConfig{
			BaseURL:      server.URL + "/site",
			SharedSecret: secret,
		}, server.Client())
	})

	It("looks up the user by LINE id without a signature", func() {
		respBody = `{"id":7,"last_name":"Yamada","line_id":"U1"}`

		user, err := client.Me(ctx, "U1")

		Expect(err).NotTo(HaveOccurred())
		Expect(user.ID).To(Equal(int64(7)))
		Expect(*user.LastName).To(Equal("Yamada"))
		Expect(captured.method).To(Equal(http.MethodPost))
		Expect(captured.path).To(Equal("/site/wp-json/custom/v1/me"))
		Expect(string(captured.body)).To(MatchJSON(`{"line_id":"U1"}`))
		Expect(captured.signature).To(BeEmpty())
	})

	It("signs registration with an HMAC of the exact body", func() {
		respBody = `{"status":200,"data":{"id":9}}`

		result, err := client.Register(ctx, wordpress.RegisterRequest{
			Grade:     2,
			Class:     3,
			LastName:  "Yamada",
			FirstName: "Taro",
			Email:     "taro@example.com",
			LineID:    "U1",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(string(result)).To(MatchJSON(respBody))
		Expect(captured.path).To(Equal("/site/wp-json/custom/v1/register"))
		Expect(captured.signature).To(Equal(wordpress.Sign([]byte(secret), captured.body)))

		var sent map[string]any
		Expect(json.Unmarshal(captured.body, &sent)).To(Succeed())
		Expect(sent).To(HaveKeyWithValue("lastName", "Yamada"))
		Expect(sent).To(HaveKeyWithValue("line_id", "U1"))
	})

	It("fetches the history body untouched", func() {
		respBody = `[{"id":1,"title":"Lunch","status":"answered"}]`

		body, err := client.SurveyHistory(ctx, 42)

		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal(respBody))
		Expect(captured.method).To(Equal(http.MethodGet))
		Expect(captured.path).To(Equal("/site/wp-json/custom/v1/survey_history"))
		Expect(captured.query).To(HaveKeyWithValue("user_id", "42"))
	})

	It("decodes survey detail with a reply row", func() {
		respBody = `{
			"group": {"fm_title": "Lunch", "fm_text": "Pick one"},
			"form": [{"fm_label": "Menu", "fm_type": "radio", "fm_value": "A,B"}],
			"post": {"ID": 15},
			"my_reply": {"fm_re_id": "3", "user_id": 42, "post_id": "15", "answer": "A", "str": "", "history": null, "created": "2024-04-01 09:00:00", "updated": null}
		}`

		detail, err := client.SurveyDetail(ctx, 42, "15")

		Expect(err).NotTo(HaveOccurred())
		Expect(captured.query).To(HaveKeyWithValue("survey_id", "15"))
		Expect(detail.Group.Title).To(Equal("Lunch"))
		Expect(detail.Form).To(HaveLen(1))
		Expect(detail.Post.ID).To(Equal(int64(15)))
		Expect(detail.MyReply.FmReID.Exists()).To(BeTrue())
		Expect(detail.MyReply.UserID.Value).To(Equal("42"))
		Expect(detail.MyReply.Updated.Valid).To(BeFalse())
	})

	It("signs reply submissions", func() {
		respBody = `{"status":200}`

		_, err := client.SubmitReply(ctx, map[string]any{"user_id": 42, "post_id": 15, "q1": "A"})

		Expect(err).NotTo(HaveOccurred())
		Expect(captured.path).To(Equal("/site/wp-json/custom/v1/survey_reply"))
		Expect(captured.signature).To(Equal(wordpress.Sign([]byte(secret), captured.body)))
	})

	It("surfaces the plugin's error message", func() {
		status = http.StatusConflict
		respBody = `{"error":"already registered","code":"duplicate","field":"email"}`

		_, err := client.Me(ctx, "U1")

		var apiErr *wordpress.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusConflict))
		Expect(apiErr.Message).To(Equal("already registered"))
		Expect(apiErr.Code).To(Equal("duplicate"))
		Expect(apiErr.Field).To(Equal("email"))
		Expect(apiErr.IsClientError()).To(BeTrue())
	})

	It("falls back to the status text for non-JSON errors", func() {
		status = http.StatusBadGateway
		respBody = `<html>bad gateway</html>`

		_, err := client.SurveyHistory(ctx, 1)

		var apiErr *wordpress.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Message).To(Equal("Bad Gateway"))
		Expect(apiErr.IsClientError()).To(BeFalse())
	})

	It("reports an unreachable site as unavailable", func() {
		server.Close()

		_, err := client.SurveyHistory(ctx, 1)

		Expect(errors.Is(err, wordpress.ErrUnavailable)).To(BeTrue())
	})

	It("reports an undecodable success body as unavailable", func() {
		respBody = `not json`

		_, err := client.Me(ctx, "U1")

		Expect(errors.Is(err, wordpress.ErrUnavailable)).To(BeTrue())
	})
})

var _ = Describe("Sign", func() {
	It("produces a stable hex digest", func() {
		sig := wordpress.Sign([]byte("key"), []byte(`{"a":1}`))
		Expect(sig).To(HaveLen(64))
		Expect(wordpress.Sign([]byte("key"), []byte(`{"a":1}`))).To(Equal(sig))
		Expect(wordpress.Sign([]byte("other"), []byte(`{"a":1}`))).NotTo(Equal(sig))
	})
})

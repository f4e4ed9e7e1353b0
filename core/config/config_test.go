package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pken.app/survey-gateway/core/config"
)

var envKeys = []string{
	"SURVEY_ENV", "PORT", "TRACE_HEADER_NAME",
	"WP_API_BASE", "WP_SHARED_SECRET", "WP_TIMEOUT",
	"LIFF_ID", "LIFF_DISABLED",
	"REDIS_URL", "HISTORY_CACHE_TTL",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	"OTEL_SERVICE_INSTANCE_ID", "OTEL_TRACES_SAMPLE_RATIO", "SNOWFLAKE_NODE_ID",
}

// setEnv replaces the config environment for one test. SURVEY_ENV defaults to
// "test" so no .env file from the working directory leaks in.
func setEnv(vars map[string]string) {
	for _, key := range envKeys {
		if old, ok := os.LookupEnv(key); ok {
			DeferCleanup(os.Setenv, key, old)
		} else {
			DeferCleanup(os.Unsetenv, key)
		}
		Expect(os.Unsetenv(key)).To(Succeed())
	}
	if _, ok := vars["SURVEY_ENV"]; !ok {
		vars["SURVEY_ENV"] = "test"
	}
	for k, v := range vars {
		Expect(os.Setenv(k, v)).To(Succeed())
	}
}

var _ = Describe("Load", func() {
	It("applies defaults", func() {
		setEnv(map[string]string{"WP_API_BASE": "https://example.com/vote/"})

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.TraceHeaderName).To(Equal("X-Trace-Id"))
		Expect(cfg.WordPress.BaseURL).To(Equal("https://example.com/vote"))
		Expect(cfg.WordPress.Timeout).To(Equal(10 * time.Second))
		Expect(cfg.Cache.HistoryTTL).To(Equal(60 * time.Second))
		Expect(cfg.Cache.Enabled()).To(BeFalse())
		Expect(cfg.LIFF.Enabled()).To(BeFalse())
		Expect(cfg.OTel.Enabled()).To(BeFalse())
		Expect(cfg.OTel.ServiceName).To(Equal("survey-gateway"))
		Expect(cfg.OTel.SampleRatio).To(Equal(1.0))
		Expect(cfg.OTel.Environment).To(Equal("test"))
		Expect(cfg.NodeID).To(Equal(int64(1)))
	})

	It("reads telemetry and node settings", func() {
		setEnv(map[string]string{
			"WP_API_BASE":                 "https://example.com",
			"OTEL_EXPORTER_OTLP_ENDPOINT": "http://collector:4318/",
			"OTEL_SERVICE_INSTANCE_ID":    "gw-2",
			"OTEL_TRACES_SAMPLE_RATIO":    "0.25",
			"SNOWFLAKE_NODE_ID":           "7",
		})

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.OTel.Endpoint).To(Equal("http://collector:4318"))
		Expect(cfg.OTel.InstanceID).To(Equal("gw-2"))
		Expect(cfg.OTel.SampleRatio).To(Equal(0.25))
		Expect(cfg.NodeID).To(Equal(int64(7)))
	})

	It("rejects a sample ratio above one", func() {
		setEnv(map[string]string{
			"WP_API_BASE":              "https://example.com",
			"OTEL_TRACES_SAMPLE_RATIO": "2",
		})

		_, err := config.Load(config.ServiceTypeServer)

		Expect(err).To(MatchError(ContainSubstring("OTEL_TRACES_SAMPLE_RATIO")))
	})

	It("reads overrides", func() {
		setEnv(map[string]string{
			"WP_API_BASE":       "https://example.com",
			"WP_TIMEOUT":        "3",
			"LIFF_ID":           "1234-abcd",
			"REDIS_URL":         "redis://localhost:6379/0",
			"HISTORY_CACHE_TTL": "30",
			"PORT":              "9000",
		})

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("9000"))
		Expect(cfg.WordPress.Timeout).To(Equal(3 * time.Second))
		Expect(cfg.LIFF.Enabled()).To(BeTrue())
		Expect(cfg.Cache.Enabled()).To(BeTrue())
		Expect(cfg.Cache.HistoryTTL).To(Equal(30 * time.Second))
	})

	It("treats LIFF_DISABLED as a kill switch", func() {
		setEnv(map[string]string{
			"WP_API_BASE":   "https://example.com",
			"LIFF_ID":       "1234-abcd",
			"LIFF_DISABLED": "true",
		})

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LIFF.Enabled()).To(BeFalse())
	})

	It("disables the cache with a zero TTL", func() {
		setEnv(map[string]string{
			"WP_API_BASE":       "https://example.com",
			"REDIS_URL":         "redis://localhost:6379/0",
			"HISTORY_CACHE_TTL": "0",
		})

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Cache.Enabled()).To(BeFalse())
	})

	It("requires WP_API_BASE", func() {
		setEnv(map[string]string{})

		_, err := config.Load(config.ServiceTypeServer)

		Expect(err).To(MatchError(ContainSubstring("WP_API_BASE")))
	})

	It("requires the shared secret in production", func() {
		setEnv(map[string]string{
			"SURVEY_ENV":  "production",
			"WP_API_BASE": "https://example.com",
		})

		_, err := config.Load(config.ServiceTypeServer)

		Expect(err).To(MatchError(ContainSubstring("WP_SHARED_SECRET")))
	})
})

package otel_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/attribute"

	"pken.app/survey-gateway/common/otel"
	"pken.app/survey-gateway/core/config"
)

func gatewayConfig() config.Config {
	return config.Config{
		Env: "staging",
		OTel: config.OTelConfig{
			ServiceName:    "survey-gateway",
			ServiceVersion: "1.4.0",
			InstanceID:     "gw-1",
		},
		WordPress: config.WordPressConfig{BaseURL: "https://vote.example.com/pken-dev_vote"},
		LIFF:      config.LIFFConfig{ID: "1234-abcd"},
	}
}

var _ = Describe("Resource", func() {
	It("describes the gateway instance", func() {
		res, err := otel.Resource(gatewayConfig())
		Expect(err).NotTo(HaveOccurred())

		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range res.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		Expect(attrs["service.name"].AsString()).To(Equal("survey-gateway"))
		Expect(attrs["service.version"].AsString()).To(Equal("1.4.0"))
		Expect(attrs["service.instance.id"].AsString()).To(Equal("gw-1"))
		Expect(attrs["deployment.environment"].AsString()).To(Equal("staging"))
		Expect(attrs["survey.wordpress.host"].AsString()).To(Equal("vote.example.com"))
		Expect(attrs["survey.liff.enabled"].AsBool()).To(BeTrue())
		Expect(attrs["survey.cache.enabled"].AsBool()).To(BeFalse())
	})

	It("leaves out an unknown instance id", func() {
		cfg := gatewayConfig()
		cfg.OTel.InstanceID = ""

		res, err := otel.Resource(cfg)
		Expect(err).NotTo(HaveOccurred())

		_, found := res.Set().Value("service.instance.id")
		Expect(found).To(BeFalse())
	})
})

var _ = Describe("Setup", func() {
	It("returns no telemetry without a collector endpoint", func() {
		telemetry, err := otel.Setup(context.Background(), gatewayConfig())

		Expect(err).NotTo(HaveOccurred())
		Expect(telemetry).To(BeNil())
	})
})

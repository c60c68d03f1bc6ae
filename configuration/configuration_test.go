package configuration_test

import (
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/durationjson"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"code.cloudfoundry.org/actionchain/configuration"
)

var _ = Describe("Configuration", func() {
	var configPath string

	writeConfig := func(payload string) {
		Expect(os.WriteFile(configPath, []byte(payload), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		configPath = filepath.Join(GinkgoT().TempDir(), "actionchain.yml")
	})

	Describe("Load", func() {
		It("parses durations in human form", func() {
			writeConfig(`
max_in_flight_chains: 8
action_timeout: 30s
retry_frequency: 250ms
`)

			config, err := configuration.Load(configPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(config.MaxInFlightChains).To(Equal(8))
			Expect(config.ActionTimeout).To(Equal(durationjson.Duration(30 * time.Second)))
			Expect(config.RetryFrequency).To(Equal(durationjson.Duration(250 * time.Millisecond)))
		})

		It("keeps defaults for absent keys", func() {
			writeConfig(`max_in_flight_chains: 2`)

			config, err := configuration.Load(configPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(config.MaxInFlightChains).To(Equal(2))
			Expect(config.RetryTimeout).To(Equal(durationjson.Duration(configuration.DefaultRetryTimeout)))
			Expect(config.SubscriberBuffer).To(Equal(configuration.DefaultSubscriberBuffer))
		})

		It("fails on an unreadable file", func() {
			_, err := configuration.Load(filepath.Join(GinkgoT().TempDir(), "no-such-file.yml"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to read config"))
		})

		It("fails on malformed yaml", func() {
			writeConfig(`max_in_flight_chains: [nonsense`)

			_, err := configuration.Load(configPath)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to parse config"))
		})

		It("rejects invalid values", func() {
			writeConfig(`max_in_flight_chains: -1`)

			_, err := configuration.Load(configPath)
			Expect(err).To(MatchError(configuration.ErrMaxInFlightInvalid))
		})
	})

	Describe("Validate", func() {
		It("accepts the defaults", func() {
			Expect(configuration.DefaultConfig().Validate()).To(Succeed())
		})

		It("rejects a negative start rate", func() {
			config := configuration.DefaultConfig()
			config.ChainStartsPerSecond = -1

			Expect(config.Validate()).To(MatchError(configuration.ErrStartsPerSecondInvalid))
		})

		It("rejects a non-positive retry frequency", func() {
			config := configuration.DefaultConfig()
			config.RetryFrequency = 0

			Expect(config.Validate()).To(MatchError(configuration.ErrRetryFrequencyInvalid))
		})

		It("rejects a non-positive subscriber buffer", func() {
			config := configuration.DefaultConfig()
			config.SubscriberBuffer = 0

			Expect(config.Validate()).To(MatchError(configuration.ErrSubscriberBufferInvalid))
		})
	})
})

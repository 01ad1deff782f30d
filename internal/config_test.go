package internal_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
)

var _ = Describe("Config", func() {
	Describe("LoadConfigFromEnv", func() {
		It("should carry logging settings under observability", func() {
			cfg := internal.LoadConfigFromEnv()

			Expect(cfg.Observability.Logging.Level).To(Equal("info"))
			Expect(cfg.Observability.Logging.Format).To(Equal("json"))
		})

		It("should default the server and pool settings", func() {
			cfg := internal.LoadConfigFromEnv()

			Expect(cfg.Server.Port).To(Equal(8080))
			Expect(cfg.Server.AllowedOrigins).To(Equal("*"))
			Expect(cfg.Database.MaxOpenConns).To(Equal(25))
		})
	})

	Describe("Validate", func() {
		It("should reject a missing database source", func() {
			cfg := internal.LoadConfigFromEnv()
			cfg.Database.Source = ""
			cfg.Security.AccessTokenSecret = strings.Repeat("a", 32)
			cfg.Security.RefreshTokenSecret = strings.Repeat("b", 32)

			err := cfg.Validate()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database source is required"))
		})

		It("should reject an allowed origin list with garbage entries", func() {
			cfg := internal.ServerConfig{
				AllowedOrigins:    "https://app.example.com,://not-a-url",
				ReadTimeout:       10,
				ReadHeaderTimeout: 5,
			}

			Expect(cfg.Validate()).To(HaveOccurred())
		})
	})
})

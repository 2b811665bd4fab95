package main_test

import (
	"strings"
	"testing"

	"github.com/frahmantamala/inventory-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"
)

func TestInventoryManagement(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InventoryManagement Suite")
}

var _ = Describe("shipped config.yml", func() {
	load := func() *internal.Config {
		v := viper.New()
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		Expect(v.ReadInConfig()).To(Succeed())

		var cfg internal.Config
		Expect(v.Unmarshal(&cfg)).To(Succeed())
		return &cfg
	}

	It("passes validation", func() {
		Expect(load().Validate()).To(Succeed())
	})

	It("only exposes OTP codes in development", func() {
		cfg := load()
		Expect(cfg.CodeFallbackAllowed()).To(BeTrue())

		cfg.App.Env = internal.EnvProduction
		Expect(cfg.CodeFallbackAllowed()).To(BeFalse())
	})

	It("rejects a short session secret", func() {
		cfg := load()
		cfg.Session.Secret = "short"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("session secret must be at least 32 characters")))
	})
})

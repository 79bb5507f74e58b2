package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RiskThresholds are the probability boundaries for risk tiers.
// Inclusive on the lower band: p <= Low => LOW, p <= Medium => MEDIUM.
type RiskThresholds struct {
	Low    float64 `mapstructure:"low"`
	Medium float64 `mapstructure:"medium"`
}

// RecommendationRule maps a risk level to the advice attached to a result.
// HighValueExtra is appended when the order value exceeds HighValueAbove.
type RecommendationRule struct {
	RiskLevel      string   `mapstructure:"riskLevel"`
	Messages       []string `mapstructure:"messages"`
	HighValueAbove float64  `mapstructure:"highValueAbove"`
	HighValueExtra string   `mapstructure:"highValueExtra"`
}

// RulesConfig is the hot-reloadable business rules document.
type RulesConfig struct {
	RiskThresholds  RiskThresholds       `mapstructure:"riskThresholds"`
	Recommendations []RecommendationRule `mapstructure:"recommendations"`
}

func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		RiskThresholds: RiskThresholds{Low: 0.3, Medium: 0.6},
		Recommendations: []RecommendationRule{
			{
				RiskLevel: "HIGH",
				Messages: []string{
					"Consider manual review before fulfillment",
					"Verify product description and customer expectations",
				},
				HighValueAbove: 200,
				HighValueExtra: "Consider requiring signature on delivery",
			},
			{
				RiskLevel: "MEDIUM",
				Messages: []string{
					"Monitor order for potential issues",
					"Ensure quality packaging",
				},
			},
			{
				RiskLevel: "LOW",
				Messages: []string{
					"Process normally",
					"Standard fulfillment recommended",
				},
			},
		},
	}
}

// RulesHolder serves the current rules config and swaps it atomically on
// file change. Readers never block.
type RulesHolder struct {
	current atomic.Value // holds RulesConfig
}

func NewRulesHolder() (*RulesHolder, error) {
	v := viper.New()

	v.SetConfigName("rules")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/returnsight")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RETURNSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultRulesConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		if err := v.UnmarshalKey("rules", &cfg); err != nil {
			return nil, err
		}
		if err := validateRulesConfig(cfg); err != nil {
			return nil, err
		}
	}

	holder := &RulesHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultRulesConfig()
		if err := v.UnmarshalKey("rules", &updated); err != nil {
			log.Printf("[rules-config] reload failed: %v", err)
			return
		}
		if err := validateRulesConfig(updated); err != nil {
			log.Printf("[rules-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[rules-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RulesHolder) Get() RulesConfig {
	return h.current.Load().(RulesConfig)
}

// Store replaces the current rules. Used by tests.
func (h *RulesHolder) Store(cfg RulesConfig) {
	h.current.Store(cfg)
}

func validateRulesConfig(cfg RulesConfig) error {
	if cfg.RiskThresholds.Low <= 0 || cfg.RiskThresholds.Low >= cfg.RiskThresholds.Medium {
		return errors.New("rules.riskThresholds must satisfy 0 < low < medium")
	}
	if cfg.RiskThresholds.Medium >= 1 {
		return errors.New("rules.riskThresholds.medium must be below 1")
	}
	if len(cfg.Recommendations) == 0 {
		return errors.New("rules.recommendations cannot be empty")
	}
	return nil
}

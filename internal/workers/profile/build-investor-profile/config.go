package buildinvestorprofile

import (
	"fmt"
	"time"

	"github.com/Ayush1216/Frictionless/internal/common/config"
)

type Config struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxJobsActive    int           `mapstructure:"max_jobs_active"`
	Timeout          time.Duration `mapstructure:"timeout"`
	UseLLM           bool          `mapstructure:"use_llm"`
	Provider         string        `mapstructure:"provider"`
	SecondPass       bool          `mapstructure:"second_pass"`
	MissingThreshold float64       `mapstructure:"missing_threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    5,
		Timeout:          120 * time.Second,
		UseLLM:           true,
		Provider:         "auto",
		SecondPass:       true,
		MissingThreshold: 0.40,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MissingThreshold < 0 || c.MissingThreshold > 1 {
		return fmt.Errorf("missing_threshold must be between 0 and 1")
	}
	return nil
}

func createConfigFromAppConfig(appCfg *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}
	if wc, ok := appCfg.Workers["build-investor-profile"]; ok {
		cfg.Enabled = wc.Enabled
		if wc.MaxJobsActive > 0 {
			cfg.MaxJobsActive = wc.MaxJobsActive
		}
		if wc.Timeout > 0 {
			cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		}
	}
	cfg.Provider = appCfg.LLM.Provider
	cfg.SecondPass = appCfg.LLM.SecondPass.Enabled
	if appCfg.LLM.SecondPass.InvestorThreshold > 0 {
		cfg.MissingThreshold = appCfg.LLM.SecondPass.InvestorThreshold
	}
	return cfg
}

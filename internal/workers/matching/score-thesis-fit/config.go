package scorethesisfit

import (
	"fmt"
	"time"

	"github.com/Ayush1216/Frictionless/internal/common/config"
)

type Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	MaxJobsActive     int           `mapstructure:"max_jobs_active"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RubricPath        string        `mapstructure:"rubric_path"`
	MaxTasks          int           `mapstructure:"max_tasks"`
	ReasoningEnabled  bool          `mapstructure:"reasoning_enabled"`
	ReasoningProvider string        `mapstructure:"reasoning_provider"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		MaxJobsActive:     10,
		Timeout:           90 * time.Second,
		MaxTasks:          12,
		ReasoningEnabled:  false,
		ReasoningProvider: "auto",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxTasks <= 0 {
		return fmt.Errorf("max_tasks must be positive")
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
	if wc, ok := appCfg.Workers["score-thesis-fit"]; ok {
		cfg.Enabled = wc.Enabled
		if wc.MaxJobsActive > 0 {
			cfg.MaxJobsActive = wc.MaxJobsActive
		}
		if wc.Timeout > 0 {
			cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		}
	}
	cfg.RubricPath = appCfg.Matching.RubricPath
	if appCfg.Matching.MaxTasks > 0 {
		cfg.MaxTasks = appCfg.Matching.MaxTasks
	}
	cfg.ReasoningEnabled = appCfg.LLM.Reasoning.Enabled
	if appCfg.LLM.Reasoning.Provider != "" {
		cfg.ReasoningProvider = appCfg.LLM.Reasoning.Provider
	}
	return cfg
}

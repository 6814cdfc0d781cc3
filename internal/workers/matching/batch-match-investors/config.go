package batchmatchinvestors

import (
	"fmt"
	"time"

	"github.com/Ayush1216/Frictionless/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RubricPath    string        `mapstructure:"rubric_path"`
	Concurrency   int           `mapstructure:"concurrency"`
	CandidateCap  int           `mapstructure:"candidate_cap"`
	BestN         int           `mapstructure:"best_n"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 3,
		Timeout:       300 * time.Second,
		Concurrency:   8,
		CandidateCap:  200,
		BestN:         10,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.CandidateCap <= 0 {
		return fmt.Errorf("candidate_cap must be positive")
	}
	if c.BestN <= 0 {
		return fmt.Errorf("best_n must be positive")
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
	if wc, ok := appCfg.Workers["batch-match-investors"]; ok {
		cfg.Enabled = wc.Enabled
		if wc.MaxJobsActive > 0 {
			cfg.MaxJobsActive = wc.MaxJobsActive
		}
		if wc.Timeout > 0 {
			cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		}
	}
	cfg.RubricPath = appCfg.Matching.RubricPath
	if appCfg.Matching.BatchConcurrency > 0 {
		cfg.Concurrency = appCfg.Matching.BatchConcurrency
	}
	return cfg
}

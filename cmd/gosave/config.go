package main

import (
	"github.com/lk2023060901/gosave/pkg/log"
	gosaveviper "github.com/lk2023060901/gosave/pkg/util/viper"
)

// appConfig holds the subset of settings gosave reads from its config
// file (YAML or JSON, via pkg/util/viper); everything else is flags.
type appConfig struct {
	Log         log.Config `mapstructure:"log"`
	Concurrency int        `mapstructure:"concurrency"`
}

func defaultAppConfig() *appConfig {
	return &appConfig{
		Log: log.Config{
			Level:  "info",
			Format: "console",
			Stdout: true,
		},
		Concurrency: 4,
	}
}

// loadConfig reads path (if non-empty) over the defaults; a missing path
// is not an error, callers run with defaults alone.
func loadConfig(path string) (*appConfig, error) {
	cfg := defaultAppConfig()
	if path == "" {
		return cfg, nil
	}
	v := gosaveviper.New()
	if err := v.LoadFile(path); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

package viper

import (
	"path/filepath"

	spfviper "github.com/spf13/viper"
)

// Config wraps an spf13/viper instance, exposing a thin YAML/JSON
// config-loading interface for cmd/gosave's tool configuration.
type Config struct {
	v *spfviper.Viper
}

// New creates an empty Config.
// Call LoadFile to load a config file before calling Unmarshal/UnmarshalKey.
func New() *Config {
	return &Config{
		v: spfviper.New(),
	}
}

// LoadFile loads a YAML or JSON config file into Config.
// The file type is inferred from its extension (.yaml/.yml/.json).
func (c *Config) LoadFile(path string) error {
	if c.v == nil {
		c.v = spfviper.New()
	}

	c.v.SetConfigFile(path)

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		c.v.SetConfigType("yaml")
	case ".json":
		c.v.SetConfigType("json")
	default:
		// Let viper infer the type itself, or return a clear error on read.
	}

	return c.v.ReadInConfig()
}

// Unmarshal deserializes the full config into dst.
// dst should be a pointer to a struct or map.
func (c *Config) Unmarshal(dst interface{}) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(dst)
}

// UnmarshalKey deserializes the sub-config at key into dst.
// dst should be a pointer to a struct or map.
func (c *Config) UnmarshalKey(key string, dst interface{}) error {
	if c.v == nil {
		return nil
	}
	return c.v.UnmarshalKey(key, dst)
}

package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mathrick/lively/internal/runtime"
)

// Config is the CLI-side configuration file (lively.yaml).
type Config struct {
	// IntervalSeconds is the idle refresh interval. Default 0.25.
	IntervalSeconds float64 `yaml:"interval_seconds"`

	// Evaluator selects the expression evaluator: "shell" or "calc".
	Evaluator string `yaml:"evaluator"`

	// Shell is the shell binary for the shell evaluator.
	Shell string `yaml:"shell"`

	// Listen is the introspection server address for `lively serve`.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IntervalSeconds: runtime.DefaultInterval.Seconds(),
		Evaluator:       "shell",
		Shell:           "sh",
		Listen:          ":7350",
		LogLevel:        "info",
	}
}

// Load reads a YAML config file, layering it over the defaults. A missing
// file at the default path is not an error; it just means "no overrides".
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.IntervalSeconds <= 0 {
		return cfg, fmt.Errorf("config %s: interval_seconds must be positive", path)
	}
	return cfg, nil
}

// Interval returns the refresh interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}

package crucible

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/xraph/crucible/pkg/logger"
)

// Config is the container's configuration.
type Config struct {
	Logging       logger.LoggingConfig `yaml:"logging"`
	Orchestration OrchestrationConfig  `yaml:"orchestration"`
}

// OrchestrationConfig holds orchestration knobs.
type OrchestrationConfig struct {
	// MaxMutationRounds bounds the catch-all registry-mutation loop. Zero,
	// the default, keeps the loop unbounded: it runs until a full registry
	// scan discovers nothing new. A positive bound turns a registry that
	// never stabilizes into a startup error instead of a hang.
	MaxMutationRounds int `yaml:"max_mutation_rounds"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Logging: logger.LoggingConfig{
			Level:  logger.LevelInfo,
			Format: "console",
		},
	}
}

// LoadConfig reads and validates a YAML configuration file. Keys absent
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration, reporting every problem at once.
func (c Config) Validate() error {
	var result error

	switch c.Logging.Level {
	case "", logger.LevelDebug, logger.LevelInfo, logger.LevelWarn, logger.LevelError:
	default:
		result = multierr.Append(result, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		result = multierr.Append(result, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	if c.Orchestration.MaxMutationRounds < 0 {
		result = multierr.Append(result,
			fmt.Errorf("orchestration.max_mutation_rounds: must be >= 0, got %d", c.Orchestration.MaxMutationRounds))
	}

	return result
}

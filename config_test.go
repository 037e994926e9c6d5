package crucible

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/xraph/crucible/pkg/logger"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "crucible.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, logger.LevelInfo, cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Zero(t, cfg.Orchestration.MaxMutationRounds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
orchestration:
  max_mutation_rounds: 8
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, logger.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.Orchestration.MaxMutationRounds)
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: warn
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, logger.LevelWarn, cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "logging: [unclosed")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: verbose
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "logging.level")
}

func TestConfigValidate_AggregatesErrors(t *testing.T) {
	cfg := Config{
		Logging: logger.LoggingConfig{
			Level:  "verbose",
			Format: "xml",
		},
		Orchestration: OrchestrationConfig{MaxMutationRounds: -1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

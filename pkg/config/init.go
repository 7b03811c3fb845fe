package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# ATF Configuration File
#
# Configuration precedence (highest to lowest):
#   1. CLI flags
#   2. Environment variables (ATF_*)
#   3. This file
#   4. Built-in defaults

# target is the process image name RemoteReader attaches to, e.g. "game.exe".
target: ""

# dump_json selects JSON rendering for StructDumper output instead of text.
dump_json: false

# base_address overrides the target module's base address (0 = auto-detect).
base_address: 0

# api_host/api_port is the MessageServer bind address.
api_host: "127.0.0.1"
api_port: 9000

# num_workers is the worker-pool size draining the inbound request queue.
num_workers: 4

version: "1.0.0"
shutdown_timeout: 10s

logging:
  level: "INFO"
  format: "text"
  output: "stdout"

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"

metrics:
  enabled: false
  port: 9090
`

// InitConfig creates a configuration file at the default location.
// Returns the path to the created file, or an error if one already
// exists and force is false.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a configuration file at the given path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

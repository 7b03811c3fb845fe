package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
target: "notepad.exe"

logging:
  level: "INFO"

api_port: 9001
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown_timeout 10s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.APIPort != 9001 {
		t.Errorf("Expected api_port 9001, got %d", cfg.APIPort)
	}
	if cfg.Target != "notepad.exe" {
		t.Errorf("Expected target 'notepad.exe', got %q", cfg.Target)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows running the server without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}
	if cfg.APIPort != 9000 {
		t.Errorf("Expected default API port 9000, got %d", cfg.APIPort)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_WorkerBounds(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
num_workers: 64
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error for num_workers above max")
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.APIPort != 9000 {
		t.Errorf("Expected default API port 9000, got %d", cfg.APIPort)
	}
	if cfg.NumWorkers != 4 {
		t.Errorf("Expected default worker count 4, got %d", cfg.NumWorkers)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "atf" {
		t.Errorf("Expected directory name 'atf', got %q", filepath.Base(dir))
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	_ = os.Setenv("ATF_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("ATF_API_PORT", "9090")
	defer func() {
		_ = os.Unsetenv("ATF_LOGGING_LEVEL")
		_ = os.Unsetenv("ATF_API_PORT")
	}()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

api_port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.APIPort != 9090 {
		t.Errorf("Expected port 9090 from env var, got %d", cfg.APIPort)
	}
}

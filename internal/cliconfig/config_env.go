package cliconfig

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "REALMBRIDGE_"

// ApplyEnvConfig applies configuration from environment variables (REALMBRIDGE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("engine", getenv("ENGINE"), &cfg.Engine)
	s.setString("files-dir", getenv("FILES_DIR"), &cfg.FilesDir)
	s.setString("debug-host", getenv("DEBUG_HOST"), &cfg.DebugHost)
	s.setString("allowed-origin", getenv("ALLOWED_ORIGIN"), &cfg.AllowedOrigin)
	s.setString("build-prop", getenv("BUILD_PROP"), &cfg.BuildProp)
	s.setString("assets-dir", getenv("ASSETS_DIR"), &cfg.AssetsDir)
	s.setString("state-dir", getenv("STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("analytics-url", getenv("ANALYTICS_URL"), &cfg.AnalyticsURL)

	if err := s.setIntFromString("debug-port", getenv("DEBUG_PORT"), &cfg.DebugPort); err != nil {
		return err
	}
	if err := s.setDuration("task-interval", getenv("TASK_INTERVAL"), &cfg.TaskInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", getenv("SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	return nil
}

func getenv(key string) string {
	return os.Getenv(EnvPrefix + key)
}

// LoadDotEnv loads environment variables from path without overriding ones
// already set. Missing files are ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// The same struct is decoded from YAML when the file extension asks for it.
type FileConfig struct {
	Engine          string `toml:"engine" yaml:"engine" json:"engine,omitempty" jsonschema:"description=Path to the engine WebAssembly binary"`
	FilesDir        string `toml:"files_dir" yaml:"files_dir" json:"files_dir,omitempty" jsonschema:"description=Default directory for database files"`
	DebugHost       string `toml:"debug_host" yaml:"debug_host" json:"debug_host,omitempty" jsonschema:"description=Address the debug server binds (empty binds every interface)"`
	DebugPort       int    `toml:"debug_port" yaml:"debug_port" json:"debug_port,omitempty" jsonschema:"minimum=0,maximum=65535,default=8083"`
	AllowedOrigin   string `toml:"allowed_origin" yaml:"allowed_origin" json:"allowed_origin,omitempty" jsonschema:"format=uri,default=http://localhost:8081"`
	TaskInterval    string `toml:"task_interval" yaml:"task_interval" json:"task_interval,omitempty" jsonschema:"description=Delay between engine task polls,default=10ms"`
	BuildProp       string `toml:"build_prop" yaml:"build_prop" json:"build_prop,omitempty" jsonschema:"description=Android build.prop used for emulator detection"`
	AssetsDir       string `toml:"assets_dir" yaml:"assets_dir" json:"assets_dir,omitempty" jsonschema:"description=Directory of bundled assets the engine may read"`
	StateDir        string `toml:"state_dir" yaml:"state_dir" json:"state_dir,omitempty" jsonschema:"description=Directory of status.json (defaults to files_dir/.realmbridge)"`
	LogLevel        string `toml:"log_level" yaml:"log_level" json:"log_level,omitempty" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	AnalyticsURL    string `toml:"analytics_url" yaml:"analytics_url" json:"analytics_url,omitempty" jsonschema:"format=uri,description=Usage ping endpoint (empty disables)"`
	ShutdownTimeout string `toml:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout,omitempty" jsonschema:"default=30s"`
}

// LoadFileConfig reads and parses a config file from the given path.
// Files ending in .yaml or .yml are YAML; anything else is TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.realmbridge/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".realmbridge", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("engine", fc.Engine, &cfg.Engine)
	s.setString("files-dir", fc.FilesDir, &cfg.FilesDir)
	s.setString("debug-host", fc.DebugHost, &cfg.DebugHost)
	s.setString("allowed-origin", fc.AllowedOrigin, &cfg.AllowedOrigin)
	s.setString("build-prop", fc.BuildProp, &cfg.BuildProp)
	s.setString("assets-dir", fc.AssetsDir, &cfg.AssetsDir)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("analytics-url", fc.AnalyticsURL, &cfg.AnalyticsURL)

	s.setInt("debug-port", fc.DebugPort, &cfg.DebugPort)

	if err := s.setDuration("task-interval", fc.TaskInterval, &cfg.TaskInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

package cliconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/realmbridge/internal/domain"
	"github.com/bft-labs/realmbridge/pkg/debugserver"
	"github.com/bft-labs/realmbridge/pkg/taskloop"
)

// StateSubdir is where status.json goes under the files directory when no
// state directory is configured.
const StateSubdir = ".realmbridge"

// validate is shared; building a validator is expensive.
var validate = validator.New()

// Config holds CLI configuration for realmbridge.
type Config struct {
	Engine   string `validate:"required"`
	FilesDir string `validate:"required"`

	DebugHost     string
	DebugPort     int           `validate:"gte=0,lte=65535"`
	AllowedOrigin string        `validate:"required,url"`
	TaskInterval  time.Duration `validate:"gt=0"`

	BuildProp string
	AssetsDir string `validate:"omitempty,dir"`
	StateDir  string

	LogLevel        string        `validate:"oneof=trace debug info warn error"`
	AnalyticsURL    string        `validate:"omitempty,url"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DebugPort:       debugserver.DefaultPort,
		AllowedOrigin:   debugserver.DefaultAllowedOrigin,
		TaskInterval:    taskloop.DefaultInterval,
		LogLevel:        "info",
		ShutdownTimeout: 30 * time.Second,
		StateDir:        "", // Derived from FilesDir during Validate
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, describe(verrs))
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	if c.StateDir == "" {
		c.StateDir = filepath.Join(c.FilesDir, StateSubdir)
	}

	// Ensure no trailing slash
	c.AnalyticsURL = strings.TrimRight(c.AnalyticsURL, "/")

	return nil
}

// describe renders validation errors with flag names.
func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := flagName(fe.StructField())
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", name, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", name, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

var flagNames = map[string]string{
	"Engine":          "engine",
	"FilesDir":        "files-dir",
	"DebugHost":       "debug-host",
	"DebugPort":       "debug-port",
	"AllowedOrigin":   "allowed-origin",
	"TaskInterval":    "task-interval",
	"BuildProp":       "build-prop",
	"AssetsDir":       "assets-dir",
	"StateDir":        "state-dir",
	"LogLevel":        "log-level",
	"AnalyticsURL":    "analytics-url",
	"ShutdownTimeout": "shutdown-timeout",
}

func flagName(field string) string {
	if n, ok := flagNames[field]; ok {
		return n
	}
	return field
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

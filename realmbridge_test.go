package realmbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	lib "github.com/bft-labs/realmbridge/pkg/realmbridge"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DebugPort != DefaultDebugPort {
		t.Errorf("DebugPort = %d, want %d", cfg.DebugPort, DefaultDebugPort)
	}
	if cfg.TaskInterval != 10*time.Millisecond {
		t.Errorf("TaskInterval = %v, want 10ms", cfg.TaskInterval)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	err := Run(context.Background(), DefaultConfig())
	if !errors.Is(err, lib.ErrInvalidConfig) {
		t.Errorf("Run() = %v, want ErrInvalidConfig", err)
	}
}

package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// Host drives a set of HostModules through the host application lifecycle.
type Host struct {
	mu          sync.Mutex
	modules     []HostModule
	initialized []HostModule
	logger      log.Logger
}

// NewHost creates an empty host.
func NewHost(logger log.Logger) *Host {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Host{logger: logger}
}

// Register adds a module. Modules registered after Initialize are not
// initialized retroactively.
func (h *Host) Register(m HostModule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modules = append(h.modules, m)
}

// Modules returns the registered modules in registration order.
func (h *Host) Modules() []HostModule {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostModule(nil), h.modules...)
}

// Initialize initializes every module in registration order. On failure the
// modules already initialized are destroyed in reverse order and the error
// is returned.
func (h *Host) Initialize(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.initialized) > 0 {
		return ErrAlreadyRunning
	}

	for _, m := range h.modules {
		if err := m.Initialize(ctx); err != nil {
			h.logger.Error("module initialization failed",
				log.String("module", m.Name()),
				log.Err(err))
			h.destroyLocked(ctx)
			return fmt.Errorf("initialize %s: %w", m.Name(), err)
		}
		h.initialized = append(h.initialized, m)
		h.logger.Info("module initialized", log.String("module", m.Name()))
	}
	return nil
}

// Destroy tears initialized modules down in reverse order. Every module is
// destroyed even if an earlier one fails; the first error is returned.
func (h *Host) Destroy(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.initialized) == 0 {
		return ErrNotRunning
	}
	return h.destroyLocked(ctx)
}

func (h *Host) destroyLocked(ctx context.Context) error {
	var first error
	for i := len(h.initialized) - 1; i >= 0; i-- {
		m := h.initialized[i]
		if err := m.Destroy(ctx); err != nil {
			h.logger.Error("module destroy failed",
				log.String("module", m.Name()),
				log.Err(err))
			if first == nil {
				first = fmt.Errorf("destroy %s: %w", m.Name(), err)
			}
			continue
		}
		h.logger.Info("module destroyed", log.String("module", m.Name()))
	}
	h.initialized = nil
	return first
}

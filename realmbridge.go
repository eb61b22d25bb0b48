// Package realmbridge runs the Realm React Native bridge.
//
// Example usage:
//
//	cfg := realmbridge.DefaultConfig()
//	cfg.EnginePath = "/path/to/librealm.wasm"
//	cfg.FilesDir = "/path/to/files"
//	if err := realmbridge.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Embedders that need plugins, events or an injected engine use
// pkg/realmbridge directly.
package realmbridge

import (
	"context"

	"github.com/bft-labs/realmbridge/pkg/debugserver"
	"github.com/bft-labs/realmbridge/pkg/realmbridge"
)

// Config holds the configuration of the bridge.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = realmbridge.Config

// Run starts the bridge and blocks until ctx is cancelled, then stops it.
func Run(ctx context.Context, cfg Config, opts ...realmbridge.Option) error {
	b, err := realmbridge.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		_ = b.Close(context.WithoutCancel(ctx))
		return err
	}

	<-ctx.Done()
	return b.Close(context.WithoutCancel(ctx))
}

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set EnginePath and FilesDir before calling Run.
func DefaultConfig() Config {
	return realmbridge.DefaultConfig()
}

// DefaultDebugPort is the port the debug server listens on by default.
const DefaultDebugPort = debugserver.DefaultPort

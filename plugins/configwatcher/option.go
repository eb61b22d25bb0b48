package configwatcher

import "github.com/bft-labs/realmbridge/pkg/realmbridge"

// WithConfigWatcher returns a realmbridge Option that enables config file
// watching. The watched file is realmbridge.Config.ConfigPath.
//
// Usage:
//
//	b, err := realmbridge.New(ctx, cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) realmbridge.Option {
	plugin := New(cfg)
	return realmbridge.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a realmbridge Option that enables config
// watching with default settings (debounce 100ms).
//
// Usage:
//
//	b, err := realmbridge.New(ctx, cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() realmbridge.Option {
	return WithConfigWatcher(DefaultConfig())
}

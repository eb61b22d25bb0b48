// Package realmbridge embeds the Realm React Native bridge in a Go program.
//
// The bridge exposes a native database engine to a JS host. When the JS
// runtime carries the native API directly nothing else happens. When the
// runtime runs remotely (Chrome debugging) the bridge starts a debug HTTP
// server that forwards the debugger's RPC commands to the engine, and a
// worker that keeps draining the engine's task queue.
//
// # Basic Usage
//
//	cfg := realmbridge.DefaultConfig()
//	cfg.EnginePath = "/path/to/librealm.wasm"
//	cfg.FilesDir = "/data/user/0/com.example/files"
//
//	b, err := realmbridge.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close(ctx)
//
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(b.Constants())
//
// # Engine
//
// By default the engine is a WebAssembly build loaded from
// [Config.EnginePath]. Inject another implementation with [WithEngine].
// Engines built against JavaScriptCore are rejected with
// [ErrUnsupportedJSEngine].
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler] to observe
// debug bridge state changes. Handlers are called synchronously.
//
// # Plugins
//
//	import "github.com/bft-labs/realmbridge/plugins/configwatcher"
//
//	b, err := realmbridge.New(ctx, cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
//	)
//
// Plugins are initialized on Start after the Realm module and shut down on
// Stop before it.
//
// # Lifecycle States
//
// The debug bridge is in one of [StateStopped], [StateStarting],
// [StateRunning], [StateStopping] or [StateCrashed]. Use [Bridge.Status].
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules and [CompatibilityMatrix]
// to check minimum compatible versions.
package realmbridge

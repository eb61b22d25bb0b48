// Package lifecycle ties bridge components to the lifecycle of a host
// application, independently of any particular host framework.
//
// A host (a mobile runtime, a test harness, the CLI) registers HostModules
// and drives them through Initialize and Destroy:
//
//	host := lifecycle.NewHost(logger)
//	host.Register(bridgeModule)
//	host.Register(configWatcher)
//
//	if err := host.Initialize(ctx); err != nil {
//	    return err
//	}
//	defer host.Destroy(ctx)
//
// Modules are initialized in registration order and destroyed in reverse.
//
// Long-running components additionally use a Manager to guard their own
// state machine.
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package lifecycle

// Package ports defines the interfaces that connect the bridge core to the
// native engine and to the host application.
//
// # Port Interfaces
//
//   - [Engine]: the native engine's foreign-call surface
//   - [CallInvoker]: the host's scheduler for work on the JS thread
//   - [HostContext]: what the host application provides to the bridge
//
// The bridge module (internal/app) depends only on these interfaces.
// internal/adapters/wasm implements Engine on top of a WebAssembly build of
// the engine; tests use in-memory fakes.
package ports

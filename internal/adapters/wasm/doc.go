// Package wasm loads the native engine from a WebAssembly build and exposes
// it as a ports.Engine.
//
// # Guest ABI
//
// Strings cross the boundary as a packed i64: the upper 32 bits hold a
// pointer into guest memory and the lower 32 bits its length. The host
// obtains guest memory through the guest's allocate export.
//
// Required guest exports:
//
//	memory
//	allocate(size i32) i32
//	is_context_injected() i32
//	clear_context_injected_flag()
//	set_default_file_directory(dir i64)
//	setup_debug_context() i64
//	process_debug_command(cmd i64, args i64) i64
//	try_run_task() i32
//
// Optional guest exports: _initialize, setup_flush_ui_queue(), and
// deallocate(ptr i32, size i32), which the host calls on returned strings.
//
// The host provides the module "realm_host" with:
//
//	flush_ui_queue()
//	log_message(level i32, msg i64)
//	read_asset(path i64) i64
//
// read_asset returns the contents of a bundled asset in a buffer obtained
// from allocate, or 0 when the asset is missing or no asset source is set.
package wasm

// Package app implements the Realm host module: it points the native engine
// at the host's files directory, wires the UI queue flush and, when the JS
// runtime is debugged remotely, runs the debug bridge (HTTP server plus task
// worker) and exports its hosts and port as constants.
package app

// Package host provides a ports.HostContext for running the bridge outside a
// mobile application: a files directory on disk, device info read from a
// build.prop file and a single goroutine standing in for the JS thread.
package host

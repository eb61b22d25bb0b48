// Package devenv discovers where a remote debugger can reach the bridge.
//
// On an emulator the host machine forwards localhost, so the only debug host
// is "localhost". On a physical device the debugger must use one of the
// device's routable addresses, collected from the up, non-loopback network
// interfaces.
package devenv

// Package domain contains the error vocabulary shared by every layer of the bridge.
//
// The bridge owns no persistent data model: paths and debugger payloads are
// opaque strings passed through to the native engine. What remains here are
// the sentinel errors callers match with errors.Is.
package domain

// Package analytics sends the bridge's single anonymous usage ping.
//
// At most one event is sent per process: the first caller of MarkSent wins
// and every later caller sees false. Setting REALM_DISABLE_ANALYTICS to any
// non-empty value disables sending entirely.
//
//	if analytics.Enabled(url) && analytics.MarkSent() {
//	    go sender.Send(ctx, analytics.NewEvent(version))
//	}
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package analytics

package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
)

// DisableEnv turns analytics off when set to a non-empty value.
const DisableEnv = "REALM_DISABLE_ANALYTICS"

// Event is the payload of the usage ping.
type Event struct {
	// Event names what happened, e.g. "Install".
	Event string `json:"event"`

	// AnonymousID is a SHA-256 of the host name; the name itself never leaves the machine.
	AnonymousID string `json:"anonymousId"`

	// Platform is GOOS/GOARCH of the host process.
	Platform string `json:"platform"`

	// Version of the bridge.
	Version string `json:"version"`

	// Framework is the JS host framework.
	Framework string `json:"framework"`
}

// NewEvent builds an install event for this machine.
func NewEvent(version string) Event {
	return Event{
		Event:       "Install",
		AnonymousID: anonymousID(hostname()),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		Version:     version,
		Framework:   "react-native",
	}
}

// Enabled reports whether a ping may be sent to url.
func Enabled(url string) bool {
	return strings.TrimSpace(url) != "" && os.Getenv(DisableEnv) == ""
}

var sent atomic.Bool

// MarkSent flips the process-wide "analytics sent" flag. Only the first call
// returns true.
func MarkSent() bool {
	return sent.CompareAndSwap(false, true)
}

// Sent reports whether the ping was already claimed.
func Sent() bool {
	return sent.Load()
}

func anonymousID(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

package app

import (
	"time"

	"github.com/bft-labs/realmbridge/pkg/analytics"
	"github.com/bft-labs/realmbridge/pkg/debugserver"
	"github.com/bft-labs/realmbridge/pkg/devenv"
	"github.com/bft-labs/realmbridge/pkg/lifecycle"
	"github.com/bft-labs/realmbridge/pkg/log"
	"github.com/bft-labs/realmbridge/pkg/state"
	"github.com/bft-labs/realmbridge/pkg/taskloop"
)

// Option configures a Bridge.
type Option func(*options)

type options struct {
	logger          log.Logger
	debugHost       string
	debugPort       int
	allowedOrigin   string
	taskInterval    time.Duration
	shutdownTimeout time.Duration
	stateRepo       state.Repository
	interfaces      devenv.InterfaceLister
	sender          analytics.Sender
	markSent        func() bool
	version         string
	emitter         lifecycle.EventEmitter
}

func defaultOptions() options {
	return options{
		logger:          log.NewNoopLogger(),
		debugPort:       debugserver.DefaultPort,
		allowedOrigin:   debugserver.DefaultAllowedOrigin,
		taskInterval:    taskloop.DefaultInterval,
		shutdownTimeout: lifecycle.ShutdownTimeout,
		markSent:        analytics.MarkSent,
		version:         "dev",
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDebugAddress sets the host and port of the debug server. Port 0 picks
// a free port.
func WithDebugAddress(host string, port int) Option {
	return func(o *options) {
		o.debugHost = host
		o.debugPort = port
	}
}

// WithAllowedOrigin sets the CORS origin of debug responses.
func WithAllowedOrigin(origin string) Option {
	return func(o *options) {
		o.allowedOrigin = origin
	}
}

// WithTaskInterval sets the delay between two engine task polls.
func WithTaskInterval(d time.Duration) Option {
	return func(o *options) {
		o.taskInterval = d
	}
}

// WithShutdownTimeout bounds Destroy.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithStateRepository records the debug bridge status in repo.
func WithStateRepository(repo state.Repository) Option {
	return func(o *options) {
		o.stateRepo = repo
	}
}

// WithInterfaceLister replaces network interface enumeration.
func WithInterfaceLister(l devenv.InterfaceLister) Option {
	return func(o *options) {
		o.interfaces = l
	}
}

// WithAnalytics enables the one-time usage ping through sender.
func WithAnalytics(sender analytics.Sender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

// WithAnalyticsMarker replaces the process-wide "analytics sent" flag.
// mark must return true exactly once.
func WithAnalyticsMarker(mark func() bool) Option {
	return func(o *options) {
		o.markSent = mark
	}
}

// WithVersion sets the version reported in analytics.
func WithVersion(v string) Option {
	return func(o *options) {
		o.version = v
	}
}

// WithEventEmitter observes debug bridge state changes.
func WithEventEmitter(e lifecycle.EventEmitter) Option {
	return func(o *options) {
		o.emitter = e
	}
}

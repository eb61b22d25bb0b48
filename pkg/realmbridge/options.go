package realmbridge

import (
	"net/http"

	"github.com/bft-labs/realmbridge/internal/ports"
	"github.com/bft-labs/realmbridge/pkg/analytics"
	"github.com/bft-labs/realmbridge/pkg/devenv"
	"github.com/bft-labs/realmbridge/pkg/log"
)

// Engine is the native engine boundary. Load one from WebAssembly with
// Config.EnginePath, or inject an implementation with WithEngine.
type Engine = ports.Engine

// CallInvoker schedules work on the host's JS thread.
type CallInvoker = ports.CallInvoker

// HostContext is what the host application exposes to the bridge.
type HostContext = ports.HostContext

// Logger is the structured logger used by the bridge.
type Logger = log.Logger

// LogField is a structured log field.
type LogField = log.Field

// Option configures optional behavior of a Bridge.
type Option func(*options)

// options holds the optional configuration for a Bridge instance.
type options struct {
	logger       log.Logger
	httpClient   analytics.HTTPClient
	eventHandler EventHandler
	plugins      []Plugin
	engine       Engine
	host         HostContext
	invoker      CallInvoker
	interfaces   devenv.InterfaceLister
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:     log.NewNoopLogger(),
		httpClient: http.DefaultClient,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient sets the client used for the analytics ping.
func WithHTTPClient(client analytics.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithEventHandler sets a handler for debug bridge events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the bridge starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithEngine uses engine instead of loading Config.EnginePath. The caller
// keeps ownership: Close does not close it.
func WithEngine(engine Engine) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithHostContext replaces the standalone host built from Config.FilesDir
// and Config.BuildProp.
func WithHostContext(host HostContext) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithCallInvoker replaces the standalone JS thread loop.
func WithCallInvoker(invoker CallInvoker) Option {
	return func(o *options) {
		o.invoker = invoker
	}
}

// WithInterfaceLister replaces network interface enumeration.
func WithInterfaceLister(l devenv.InterfaceLister) Option {
	return func(o *options) {
		o.interfaces = l
	}
}

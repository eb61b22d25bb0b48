// Package log provides the logging abstraction used by every bridge component.
//
// Components depend on the Logger interface only. The zerolog adapter is the
// production implementation; the no-op logger is meant for tests and for
// embedders that do not want bridge output.
//
//	logger := log.NewZerologAdapter(log.LevelInfo)
//	logger.Info("debug bridge started", log.Int("port", 8083))
//
// Derive component loggers with With, which attaches a "component" field:
//
//	workerLog := log.With(logger, "taskloop")
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log

package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across specgraph.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldBackend   = "backend"

	// Items and links
	FieldUID    = "uid"
	FieldTarget = "target"
	FieldRole   = "role"
	FieldType   = "type"

	// Files and paths
	FieldFile      = "file"
	FieldDirectory = "directory"
	FieldRoot      = "root"
	FieldCacheKey  = "cache_key"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount        = "count"
	FieldItems        = "items"
	FieldTopLevel     = "top_level"
	FieldCacheUpdates = "cache_updates"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Watcher struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func New() *Watcher {
//	    return &Watcher{
//	        logger: logger.ComponentLogger("watch"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	dirLogger := logger.ChildLogger(baseLogger, logger.FieldDirectory, dir)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

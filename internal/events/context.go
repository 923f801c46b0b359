package events

import (
	"context"
	"os"
)

type contextKey int

const (
	loggerKey contextKey = iota
	folderIDKey
)

// FromContext extracts the logger from a context, falling back to the
// process default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithFolderID tags the context's logger with the folder being synced.
func WithFolderID(ctx context.Context, id string) context.Context {
	logger := FromContext(ctx).WithField("folder_id", id)
	ctx = context.WithValue(ctx, folderIDKey, id)
	return WithLogger(ctx, logger)
}

// GetFolderID retrieves the folder ID from the context.
func GetFolderID(ctx context.Context) string {
	if id, ok := ctx.Value(folderIDKey).(string); ok {
		return id
	}
	return ""
}

var defaultLogger = &Logger{
	level:  InfoLevel,
	format: "text",
	output: os.Stderr,
	fields: make(map[string]interface{}),
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

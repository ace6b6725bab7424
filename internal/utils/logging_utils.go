// Package utils provides utility functions to support various operations within the application.
package utils

import (
	"context"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func GenerateTraceId() string {
	return uuid.New().String()
}

// ExtractServiceName returns the service label attached to every log entry.
func ExtractServiceName() string {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "spilled-server"
	}
	return service
}

// LogEntry dispatches a message to the given entry at the named level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

// LogMessageWithFields logs a message with the trace id of the request
// attached, so log lines of one request can be correlated.
func LogMessageWithFields(ctx context.Context, level, message string) {
	entry := log.WithFields(log.Fields{
		"traceId": traceIdFromContext(ctx),
		"service": ExtractServiceName(),
	})
	LogEntry(entry, level, message)
}

// LogMessageWithFieldsAndError logs a message together with an error.
func LogMessageWithFieldsAndError(ctx context.Context, level, message string, err error) {
	entry := log.WithFields(log.Fields{
		"traceId": traceIdFromContext(ctx),
		"service": ExtractServiceName(),
		"error":   err,
	})
	LogEntry(entry, level, message)
}

func traceIdFromContext(ctx context.Context) string {
	if traceId, ok := ctx.Value(TraceIdKey.String()).(string); ok {
		return traceId
	}
	return ""
}

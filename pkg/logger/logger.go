package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithPoolID adds pool ID to logger context
func (l *Logger) WithPoolID(poolID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("pool_id", poolID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Allocation logging methods

// LogSlotJoined logs when a participant takes a waitlist slot
func (l *Logger) LogSlotJoined(ctx context.Context, poolID string, participantID int64, position int) {
	l.Logger.InfoContext(ctx,
		"Slot Joined",
		slog.String("pool_id", poolID),
		slog.Int64("participant_id", participantID),
		slog.Int("position", position),
	)
}

// LogSlotLeft logs when a participant leaves a waitlist
func (l *Logger) LogSlotLeft(ctx context.Context, poolID string, participantID int64) {
	l.Logger.InfoContext(ctx,
		"Slot Left",
		slog.String("pool_id", poolID),
		slog.Int64("participant_id", participantID),
	)
}

// LogReservationClaimed logs when a topic reservation is claimed
func (l *Logger) LogReservationClaimed(ctx context.Context, topicID string, participantID int64) {
	l.Logger.InfoContext(ctx,
		"Reservation Claimed",
		slog.String("topic_id", topicID),
		slog.Int64("participant_id", participantID),
	)
}

// LogReservationConfirmed logs when a claim is promoted to a confirmed slot
func (l *Logger) LogReservationConfirmed(ctx context.Context, topicID string, participantID, confirmerID int64) {
	l.Logger.InfoContext(ctx,
		"Reservation Confirmed",
		slog.String("topic_id", topicID),
		slog.Int64("participant_id", participantID),
		slog.Int64("confirmer_id", confirmerID),
	)
}

// LogPoolTeardown logs when a pool and all its entries are removed
func (l *Logger) LogPoolTeardown(ctx context.Context, poolID string) {
	l.Logger.InfoContext(ctx,
		"Pool Teardown",
		slog.String("pool_id", poolID),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with ticketing-specific helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger using LOG_LEVEL from the environment
func New() *Logger {
	return NewWithLevel(os.Getenv("LOG_LEVEL"))
}

// NewWithLevel creates a logger at the given level. Text output in gin debug
// mode, JSON otherwise.
func NewWithLevel(levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// FromSlog wraps an existing slog logger, mainly for tests.
func FromSlog(l *slog.Logger) *Logger {
	return &Logger{Logger: l}
}

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

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
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
		slog.String("request_id", c.GetString("request_id")),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs a request that ended in a server-side failure
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("request_id", c.GetString("request_id")),
	)
}

// Ledger logging methods

func (l *Logger) LogTierCreated(ctx context.Context, tierID, eventID string, totalPool int) {
	l.Logger.InfoContext(ctx,
		"Tier Created",
		slog.String("tier_id", tierID),
		slog.String("event_id", eventID),
		slog.Int("total_pool", totalPool),
	)
}

// LogBookingCreated logs when a booking is recorded in the ledger
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, bookingNumber, tierID string, quantity int, amount int64) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("booking_number", bookingNumber),
		slog.String("tier_id", tierID),
		slog.Int("quantity", quantity),
		slog.Int64("total_amount", amount),
	)
}

// LogBookingStatusChanged logs confirm/complete/cancel transitions
func (l *Logger) LogBookingStatusChanged(ctx context.Context, bookingID, from, to string) {
	l.Logger.InfoContext(ctx,
		"Booking Status Changed",
		slog.String("booking_id", bookingID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogBookingRejected logs a purchase that was refused by the ledger
func (l *Logger) LogBookingRejected(ctx context.Context, tierID string, quantity int, reason error) {
	l.Logger.WarnContext(ctx,
		"Booking Rejected",
		slog.String("tier_id", tierID),
		slog.Int("quantity", quantity),
		slog.String("reason", reason.Error()),
	)
}

// LogAvailabilityAnomaly logs a tier whose ledger exceeds its pool
func (l *Logger) LogAvailabilityAnomaly(ctx context.Context, tierID string, totalPool, booked int) {
	l.Logger.WarnContext(ctx,
		"Availability Anomaly",
		slog.String("tier_id", tierID),
		slog.Int("total_pool", totalPool),
		slog.Int("booked", booked),
		slog.Int("raw_available", totalPool-booked),
	)
}

func (l *Logger) LogReconcileCompleted(ctx context.Context, tiers, anomalies int, duration time.Duration) {
	l.Logger.InfoContext(ctx,
		"Availability Reconciled",
		slog.Int("tiers", tiers),
		slog.Int("anomalies", anomalies),
		slog.Duration("duration", duration),
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

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

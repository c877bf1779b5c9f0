package intercept

import (
	"context"
	"log/slog"
	"time"
)

// LoggingInterceptor logs every statement through slog and warns about
// queries exceeding the slow threshold. It sits at a low order so it
// wraps the rest of the chain.
type LoggingInterceptor struct {
	Base
	logger *slog.Logger
	slow   time.Duration
}

// NewLogging returns a logging interceptor. A nil logger falls back to
// slog.Default; slow <= 0 disables the slow-query warning.
func NewLogging(logger *slog.Logger, slow time.Duration) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingInterceptor{logger: logger, slow: slow}
}

// Name implements Interceptor.
func (l *LoggingInterceptor) Name() string { return "logging" }

// Type implements Interceptor.
func (l *LoggingInterceptor) Type() Type { return TypeLogging }

// Order implements Interceptor.
func (l *LoggingInterceptor) Order() int { return 10 }

// Before logs the statement about to run.
func (l *LoggingInterceptor) Before(ctx context.Context, ec *ExecContext) error {
	l.logger.DebugContext(ctx, "executing statement",
		"op", ec.Op.String(),
		"table", ec.Table.Qualified(),
		"query", ec.SQL,
		"params", len(ec.Args),
	)
	return nil
}

// After logs the outcome and flags slow queries.
func (l *LoggingInterceptor) After(ctx context.Context, ec *ExecContext) error {
	duration := time.Since(ec.Start)
	l.logger.DebugContext(ctx, "statement executed",
		"op", ec.Op.String(),
		"table", ec.Table.Qualified(),
		"duration", duration,
		"rows", ec.Metrics.RowsAffected,
		"cached", ec.FromCache,
	)
	if l.slow > 0 && duration > l.slow {
		l.logger.WarnContext(ctx, "slow query detected",
			"duration", duration,
			"threshold", l.slow,
			"query", ec.SQL,
		)
	}
	return nil
}

// OnError logs driver failures.
func (l *LoggingInterceptor) OnError(ctx context.Context, ec *ExecContext, err error) {
	l.logger.ErrorContext(ctx, "statement failed",
		"op", ec.Op.String(),
		"table", ec.Table.Qualified(),
		"query", ec.SQL,
		"error", err,
	)
}

var _ Interceptor = (*LoggingInterceptor)(nil)

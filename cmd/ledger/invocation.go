package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kchsoft/gym-ledger/internal/bootstrap"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/logger"
)

const defaultTimeout = 30 * time.Second

// invoke runs one command with an invocation_id bound logger in ctx and a deadline.
// The outcome is logged once with its latency.
func invoke(ctx context.Context, ledger *bootstrap.Ledger, args []string) error {
	start := time.Now()
	invocationID := uuid.New().String()

	cmdLogger := slog.Default().With("invocation_id", invocationID)
	ctx = logger.WithLogger(ctx, cmdLogger)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := dispatch(ctx, ledger, args)

	fields := []any{
		"command", args[0],
		"latency", time.Since(start).String(),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		fields = append(fields, "timeout", defaultTimeout.String())
	}

	msg := "Command processed"
	switch {
	case err == nil:
		cmdLogger.Info(msg, fields...)
	case expected(err):
		cmdLogger.Warn(msg, append(fields, "error", err)...)
	default:
		cmdLogger.Error(msg, append(fields, "error", err)...)
	}
	if err != nil {
		return &loggedError{err: err}
	}
	return nil
}

// expected is true for bad invocations and registered domain errors
func expected(err error) bool {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return true
	}
	_, ok := sharedError.ResolveDomainError(err)
	return ok
}

// loggedError marks an error invoke has already logged
type loggedError struct {
	err error
}

func (e *loggedError) Error() string {
	return e.err.Error()
}

func (e *loggedError) Unwrap() error {
	return e.err
}

func reported(err error) bool {
	var logged *loggedError
	return errors.As(err, &logged)
}

package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
)

// Process exit codes
const (
	ExitOK    = 0
	ExitError = 1
)

// ErrorHandler provides centralized error handling for command runs
type ErrorHandler struct {
	logger       *slog.Logger
	out          io.Writer
	includeStack bool
}

// NewErrorHandler creates a new error handler that prints to out
func NewErrorHandler(logger *slog.Logger, out io.Writer, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		out:          out,
		includeStack: includeStack,
	}
}

// HandleError logs err, prints a one-line message and returns the exit code.
// A nil error returns ExitOK and prints nothing.
func (h *ErrorHandler) HandleError(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}

	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("error_type", string(typeOf(err))),
		slog.Bool("retryable", IsRetryable(err)),
	}
	var eErr *ExportError
	if stderrors.As(err, &eErr) && eErr.Step != "" {
		attrs = append(attrs, slog.String("step", eErr.Step))
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}
	h.logger.ErrorContext(ctx, "Command failed", attrs...)

	if h.out != nil {
		fmt.Fprintf(h.out, "error: %v\n", err)
		if IsRetryable(err) {
			fmt.Fprintln(h.out, "the failure looks transient; re-running may succeed")
		}
	}
	return ExitError
}

// typeOf classifies err, treating context cancellation as its own kind
func typeOf(err error) ErrorType {
	if t := GetErrorType(err); t != "" {
		return t
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "internal"
}

package log

import (
	"context"
	"log/slog"

	cerrors "github.com/cockroachdb/errors"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
)

// ErrFmtHandler is a slog handler that enriches records carrying an error
// under ErrAttrKey: it adds the stack trace (from cockroachdb/errors, or from
// a recovered panic) and an error code for the conversion/verification
// error types.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var (
		err     error
		hasCode bool
	)
	r.Attrs(func(attr slog.Attr) bool {
		switch attr.Key {
		case ErrAttrKey:
			err, _ = attr.Value.Any().(error)
		case ErrorCodeKey:
			hasCode = true
		}
		return true
	})
	if err == nil {
		return eh.handler.Handle(ctx, r)
	}

	if stacktrace := extractStacktrace(err); stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	if code := errorCode(err); code != "" && !hasCode {
		r.AddAttrs(slog.String(ErrorCodeKey, code))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	var panicErr *errors.PanicError
	if errors.As(err, &panicErr) {
		return panicErr.StackTrace
	}
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// errorCode maps the error types of a run to ErrorCodeKey values.
func errorCode(err error) string {
	var (
		invalid *errors.InvalidModelError
		dim     *errors.DimensionError
		eq      *errors.EquivalenceError
	)
	switch {
	case errors.As(err, &eq):
		return ErrorNotEquivalent
	case errors.As(err, &invalid):
		return ErrorInvalidModel
	case errors.As(err, &dim):
		return ErrorDimensionMismatch
	}
	return ""
}

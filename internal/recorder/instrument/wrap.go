package instrument

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/reweave/reweave/internal/recorder/runlog"
	"go.uber.org/zap"
	"runtime/debug"
	"time"
)

// Recorder instruments callables for one run. It owns no global state: the
// run-scoped log writer is injected, and every wrapped call appends exactly
// one event to it.
type Recorder struct {
	log    *runlog.Writer
	logger *zap.Logger
}

func NewRecorder(log *runlog.Writer, logger *zap.Logger) *Recorder {
	return &Recorder{
		log:    log,
		logger: logger,
	}
}

// WriteError reports that the wrapped call itself completed normally but
// its trace event could not be appended. It is deliberately distinct from
// any error the wrapped function could return; callers separate the two
// with errors.As.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("trace log append failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Wrap1 instruments a one-argument function. The returned function has the
// same signature and the same return and failure behavior: results and
// errors pass through unchanged, and panics are re-raised after being
// recorded. Wrappers nest; each layer logs its own event.
func Wrap1[A, R any](rec *Recorder, fn func(A) (R, error)) func(A) (R, error) {
	src := resolveSource(fn)
	name := funcName(fn)
	return func(a A) (R, error) {
		out, err := rec.record(name, src, []any{a}, nil, func() (any, error) {
			return fn(a)
		})
		res, _ := out.(R)
		return res, err
	}
}

// Wrap2 instruments a two-argument function. See Wrap1.
func Wrap2[A, B, R any](rec *Recorder, fn func(A, B) (R, error)) func(A, B) (R, error) {
	src := resolveSource(fn)
	name := funcName(fn)
	return func(a A, b B) (R, error) {
		out, err := rec.record(name, src, []any{a, b}, nil, func() (any, error) {
			return fn(a, b)
		})
		res, _ := out.(R)
		return res, err
	}
}

// WrapFunc instruments a variadic callable under an explicit name, for
// call sites whose arity is not known at compile time.
func WrapFunc(rec *Recorder, name string, fn func(args ...any) (any, error)) func(args ...any) (any, error) {
	src := resolveSource(fn)
	return func(args ...any) (any, error) {
		return rec.record(name, src, args, nil, func() (any, error) {
			return fn(args...)
		})
	}
}

// WrapKw is WrapFunc for callables taking named arguments; the kwargs map
// is recorded alongside the positional arguments.
func WrapKw(
	rec *Recorder,
	name string,
	fn func(args []any, kwargs map[string]any) (any, error),
) func(args []any, kwargs map[string]any) (any, error) {
	src := resolveSource(fn)
	return func(args []any, kwargs map[string]any) (any, error) {
		return rec.record(name, src, args, kwargs, func() (any, error) {
			return fn(args, kwargs)
		})
	}
}

func (rec *Recorder) record(
	name string,
	src *sourceSpan,
	args []any,
	kwargs map[string]any,
	call func() (any, error),
) (any, error) {
	event := model.Event{
		CallID:         uuid.NewString(),
		Function:       name,
		TimestampStart: model.UnixSeconds(time.Now()),
		Inputs:         reprInputs(args, kwargs),
	}
	if src != nil {
		event.SourceFile = &src.file
		event.SourceLineStart = &src.start
		event.SourceLineEnd = &src.end
	}

	finish := func(output any, detail *model.ErrorDetail) error {
		event.TimestampEnd = model.UnixSeconds(time.Now())
		event.DurationS = event.TimestampEnd - event.TimestampStart
		event.Output = output
		event.Error = detail
		return rec.log.Append(event)
	}

	var out any
	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				detail := &model.ErrorDetail{
					Kind:      fmt.Sprintf("%T", r),
					Message:   fmt.Sprintf("panic: %v", r),
					TraceText: string(debug.Stack()),
				}
				if err := finish(nil, detail); err != nil {
					rec.logger.Error("failed to append trace event for panicking call",
						zap.String("function", name), zap.Error(err))
				}
				panic(r)
			}
		}()
		out, callErr = call()
	}()

	if callErr != nil {
		detail := &model.ErrorDetail{
			Kind:      errorKind(callErr),
			Message:   callErr.Error(),
			TraceText: callErr.Error() + "\n" + string(debug.Stack()),
		}
		if err := finish(nil, detail); err != nil {
			// The wrapped call's own failure takes precedence; the append
			// failure must not replace it.
			rec.logger.Error("failed to append trace event for failed call",
				zap.String("function", name), zap.Error(err))
		}
		return nil, callErr
	}

	if err := finish(model.Repr(out), nil); err != nil {
		return out, &WriteError{Err: err}
	}
	return out, nil
}

func reprInputs(args []any, kwargs map[string]any) model.Inputs {
	inputs := model.Inputs{
		Args:   make([]any, len(args)),
		Kwargs: make(map[string]any, len(kwargs)),
	}
	for i, a := range args {
		inputs.Args[i] = model.Repr(a)
	}
	for k, v := range kwargs {
		inputs.Kwargs[k] = model.Repr(v)
	}
	return inputs
}

// errorKind names the failure category: the dynamic type of the innermost
// wrapped error, mirroring how the trace log names panic kinds.
func errorKind(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}
	return fmt.Sprintf("%T", err)
}

package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

func logger(log *slog.Logger) Middleware {
	return func(handler Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := getValues(ctx)

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = fmt.Sprintf("%s?%s", path, r.URL.RawQuery)
			}

			log.Info("request started", "method", r.Method, "path", path, "request_id", r.Header.Get("X-Request-ID"), "trace_id", v.TraceID)

			err := handler(ctx, w, r)

			log.Info("request completed", "method", r.Method, "path", path, "statusCode", v.StatusCode, "since", time.Since(v.Now).String())

			return err
		}
	}
}

// errorsHandler turns handler errors into JSON error responses. Errors
// that aren't an *Error are reported as 500 with the detail withheld.
func errorsHandler(log *slog.Logger) Middleware {
	return func(handler Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				apiErr = &Error{Code: http.StatusInternalServerError, Message: err.Error(), internal: true}
			}

			log.Error(err.Error(), "trace_id", getValues(ctx).TraceID, "code", apiErr.Code)

			if apiErr.internal {
				apiErr = &Error{Code: apiErr.Code, Message: http.StatusText(apiErr.Code)}
			}

			return respondJSON(ctx, w, apiErr.Code, apiErr)
		}
	}
}

func panics() Middleware {
	return func(handler Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))
				}
			}()

			return handler(ctx, w, r)
		}
	}
}

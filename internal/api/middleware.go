package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookly/bookly-server/internal/http/response"
	"github.com/bookly/bookly-server/internal/logger"
)

// requestLogger logs one line per request and puts a request-scoped logger in the context.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := base.With("request_id", middleware.GetReqID(r.Context()))
			ctx := logger.WithContext(r.Context(), reqLogger)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			reqLogger.Log(ctx, level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", getClientIP(r),
			)
		})
	}
}

// recoverer turns a panic into a logged 500 in the API's envelope.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.FromContext(r.Context(), log).Error("panic serving request",
						"panic", rec,
						"path", r.URL.Path,
					)
					response.InternalError(w, log)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

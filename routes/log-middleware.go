package routes

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gitlab.com/BIC_Dev/trabajo-bot/controllers"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// LoggingMiddleware logs the incoming HTTP request & its duration.
func LoggingMiddleware(statusPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()

			requestID := r.Header.Get("Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			ctx = logging.AddValues(ctx, zap.String("request_id", requestID))

			for key, val := range mux.Vars(r) {
				ctx = logging.AddValues(ctx, zap.String(key, val))
			}

			r = r.WithContext(ctx)
			wrapped := newStatusRecorder(w)
			wrapped.Header().Set("Request-ID", requestID)

			ctx = logging.AddValues(ctx,
				zap.String("proto", r.Proto),
				zap.String("method", r.Method),
				zap.String("path", r.URL.EscapedPath()),
				zap.Any("query_params", r.URL.Query()),
				zap.String("remote_address", r.RemoteAddr),
			)

			next.ServeHTTP(wrapped, r)

			if r.URL.Path == statusPath && wrapped.status < 400 {
				return
			}

			ctx = logging.AddValues(ctx,
				zap.Int("status", wrapped.status),
				zap.Float64("duration", float64(time.Since(start).Nanoseconds())/1e6),
			)

			if wrapped.status >= 400 {
				ctx = logging.AddValues(ctx, zap.String("response_body", string(wrapped.body)))
			}

			logger := logging.Logger(ctx)
			logger.Info("access_log")
		}

		return http.HandlerFunc(fn)
	}
}

// RecoveryMiddleware turns a panicking handler into a 500 response
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}

			ctx := logging.AddValues(r.Context(),
				zap.NamedError("error", err),
				zap.String("trace", string(debug.Stack())),
			)
			logger := logging.Logger(ctx)
			logger.Error("panic_log")

			controllers.Error(ctx, w, "Internal server error", err, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

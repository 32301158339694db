package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// Reporter sends unexpected errors to Sentry and hands back a code users can quote
type Reporter struct {
	hub *sentry.Hub
}

// New initialises Sentry when dsn is set. An empty dsn gives a reporter that only logs.
func New(dsn string, environment string, release string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, err
	}

	return &Reporter{hub: sentry.CurrentHub()}, nil
}

// NewWithHub func
func NewWithHub(hub *sentry.Hub) *Reporter {
	return &Reporter{hub: hub}
}

// Enabled reports whether events go to Sentry
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil && r.hub.Client() != nil
}

// Report captures err and returns the error code shown to the user
func (r *Reporter) Report(ctx context.Context, err error, tags map[string]string) string {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	var id *sentry.EventID
	if r.Enabled() {
		hub := r.hub.Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			if userID := logging.Value(ctx, "user_id"); userID != "" {
				scope.SetUser(sentry.User{ID: userID})
			}

			if requestID := logging.Value(ctx, "request_id"); requestID != "" {
				scope.SetTag("request_id", requestID)
			}

			for k, v := range tags {
				scope.SetTag(k, v)
			}
		})

		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category:  "command",
			Message:   logging.Value(ctx, "command"),
			Level:     sentry.LevelError,
			Timestamp: time.Now().UTC(),
		}, nil)

		id = hub.CaptureException(err)
	}

	if id == nil {
		uid := uuid.New().String()
		id = (*sentry.EventID)(&uid)
	}

	ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_code", string(*id)))
	logger := logging.Logger(ctx)
	logger.Error("error_log")

	return string(*id)
}

// Flush waits for queued events before shutdown
func (r *Reporter) Flush(timeout time.Duration) {
	if r.Enabled() {
		r.hub.Flush(timeout)
	}
}

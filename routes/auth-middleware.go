package routes

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"gitlab.com/BIC_Dev/trabajo-bot/controllers"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// Authentication struct
type Authentication struct {
	ServiceToken string
	BasePath     string
}

// AuthenticationMiddleware verifies the Service-Token header is set and authorized for access to the API
func (m Authentication) AuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

		serviceTokenHeader := r.Header.Get("Service-Token")
		switch {
		case r.URL.Path == m.BasePath+"/status":
			next.ServeHTTP(w, r)
		case m.ServiceToken == "":
			controllers.Error(ctx, w, "This route is disabled until a service token is configured", errors.New("no service token configured"), http.StatusForbidden)
		case serviceTokenHeader == "":
			controllers.Error(ctx, w, "A Service-Token header must be set for all routes", errors.New("missing Service-Token header"), http.StatusUnauthorized)
		case subtle.ConstantTimeCompare([]byte(serviceTokenHeader), []byte(m.ServiceToken)) == 1:
			next.ServeHTTP(w, r)
		default:
			controllers.Error(ctx, w, "An invalid Service-Token header was sent with request", errors.New("invalid Service-Token header"), http.StatusUnauthorized)
		}
	})
}

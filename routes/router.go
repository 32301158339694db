package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gitlab.com/BIC_Dev/trabajo-bot/controllers"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long in-flight requests get after the root context ends
const ShutdownTimeout = 10 * time.Second

// Router struct
type Router struct {
	Controller   *controllers.Controller
	ServiceToken string
	Port         string
	BasePath     string
}

// GetRouter creates and returns a router
func GetRouter(ctx context.Context) *mux.Router {
	return mux.NewRouter().StrictSlash(true)
}

// Handler builds the status API with its middleware
func Handler(ctx context.Context, r Router) http.Handler {
	router := GetRouter(ctx)
	auth := Authentication{
		ServiceToken: r.ServiceToken,
		BasePath:     r.BasePath,
	}

	router.HandleFunc(r.BasePath+"/status", r.Controller.GetStatus).Methods("GET")
	router.HandleFunc(r.BasePath+"/discord/all-guilds", r.Controller.GetAllGuilds).Methods("GET")
	router.HandleFunc(r.BasePath+"/commands", r.Controller.GetCommands).Methods("GET")

	router.Use(RecoveryMiddleware)
	router.Use(auth.AuthenticationMiddleware)

	loggingMiddleware := LoggingMiddleware(r.BasePath + "/status")
	return loggingMiddleware(router)
}

// AddRoutes serves the status API until ctx is cancelled
func AddRoutes(ctx context.Context, r Router) error {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	server := &http.Server{
		Addr:              ":" + r.Port,
		Handler:           Handler(ctx, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			newCtx := logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to shut down listener"))
			logger := logging.Logger(newCtx)
			logger.Error("error_log")
		}
	}()

	logger := logging.Logger(ctx)
	logger.Info("Starting Listener", zap.String("port", r.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

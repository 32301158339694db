package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/interactions/commands"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/viewmodels"
	"go.uber.org/zap"
)

// Controller struct
type Controller struct {
	Config       *configs.Config
	State        *discordgo.State
	Latency      func() time.Duration
	Dependencies commands.Dependencies
	Start        time.Time
}

// Response writes a JSON body with the given status
func Response(ctx context.Context, w http.ResponseWriter, response interface{}, status int) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))
	writeJSON(ctx, w, response, status)
}

// Error writes an error body carrying the request id, and logs 4xx as warnings and 5xx with a stack trace
func Error(ctx context.Context, w http.ResponseWriter, message string, err error, status int) {
	response := viewmodels.NewErrorResponse(err, message)
	response.RequestID = logging.Value(ctx, "request_id")
	writeJSON(ctx, w, response, status)

	ctx = logging.AddValues(ctx,
		zap.NamedError("error", err),
		zap.String("error_message", message),
		zap.Int("status", status),
	)

	logger := logging.Logger(ctx)
	if status < 500 {
		logger.Warn("error_log")
		return
	}

	logger.Error("error_log", zap.String("trace", string(debug.Stack())))
}

func writeJSON(ctx context.Context, w http.ResponseWriter, body interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to encode response"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
	}
}

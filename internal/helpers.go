package internal

import (
	"context"
	"encoding/json"
	"net/http"

	"manim-server/internal/logger"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	requestIDKey contextKey = "requestID"
)

// SetUserIDInContext adds a user ID to the request context
func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext retrieves the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

func SetRequestIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LogRequest logs the request details
func LogRequest(log logger.Logger, r *http.Request, endpoint, message string) {
	log.Info(message, "endpoint", endpoint, "request_id", GetRequestIDFromContext(r.Context()))
}

// LogResponse logs the response details
func LogResponse(log logger.Logger, r *http.Request, endpoint, message string, err error) {
	if err != nil {
		log.Error(message, "endpoint", endpoint, "request_id", GetRequestIDFromContext(r.Context()), "error", err)
		return
	}
	log.Info(message, "endpoint", endpoint, "request_id", GetRequestIDFromContext(r.Context()))
}

// EncodeJSON writes v with the given status code
func EncodeJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// EncodeError writes a JSON error response
func EncodeError(w http.ResponseWriter, message string, statusCode int) {
	EncodeJSON(w, struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  message,
		Status: statusCode,
	}, statusCode)
}

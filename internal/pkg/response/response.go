package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent, nothing useful can be done on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error logs err and writes an error body with the status text and a short message.
// Server errors are logged at error level, client errors at warn.
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	log := ctxzap.Warn
	if status >= http.StatusInternalServerError {
		log = ctxzap.Error
	}
	if err != nil {
		log(ctx, message, zap.Int("status", status), zap.Error(err))
	} else {
		log(ctx, message, zap.Int("status", status))
	}

	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// Success writes a 200 OK response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// File writes content as a download attachment
func File(w http.ResponseWriter, filename, contentType string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

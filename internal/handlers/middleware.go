package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/checkfox/go_request/internal/config"
	"github.com/checkfox/go_request/internal/logger"
	"github.com/google/uuid"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// AuthMiddleware provides authentication middleware for the admin endpoints
type AuthMiddleware struct {
	config *config.Config
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		config: cfg,
	}
}

// Middleware validates the shared secret header if authentication is enabled
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Auth.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		providedSecret := r.Header.Get("X-Shared-Secret")

		if providedSecret == "" {
			logger.Warn(ctx, "Authentication failed: missing X-Shared-Secret header")
			respondUnauthorized(w, ctx, "missing authentication header")
			return
		}
		if providedSecret != m.config.Auth.SharedSecret {
			logger.Warn(ctx, "Authentication failed: invalid shared secret")
			respondUnauthorized(w, ctx, "invalid authentication credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondUnauthorized(w http.ResponseWriter, ctx context.Context, message string) {
	correlationID, _ := ctx.Value(logger.CorrelationIDKey).(string)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Correlation-ID", correlationID)
	w.WriteHeader(http.StatusUnauthorized)

	response := ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.LogError(ctx, "Failed to encode unauthorized response", err)
	}
}

// CorrelationMiddleware tags each request with a correlation ID, propagated
// through the context for logging and echoed in the response header
type CorrelationMiddleware struct{}

// NewCorrelationMiddleware creates a new CorrelationMiddleware
func NewCorrelationMiddleware() *CorrelationMiddleware {
	return &CorrelationMiddleware{}
}

// Middleware attaches a correlation ID to the request context
func (m *CorrelationMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)
		w.Header().Set("X-Correlation-ID", correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RecoveryMiddleware recovers from panics and returns 500 Internal Server Error
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new RecoveryMiddleware
func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// Middleware wraps a handler with panic recovery
func (m *RecoveryMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				ctx := r.Context()
				correlationID, _ := ctx.Value(logger.CorrelationIDKey).(string)
				logger.Error(ctx, "Panic recovered", "panic", rec, "path", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				response := ErrorResponse{
					Error:         "internal server error",
					CorrelationID: correlationID,
				}
				if err := json.NewEncoder(w).Encode(response); err != nil {
					logger.LogError(ctx, "Failed to encode error response", err)
				}
			}
		}()

		next.ServeHTTP(w, r)
	})
}

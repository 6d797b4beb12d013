package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mysteryvault/storefront/internal/token"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
)

// sessionCookie is the HTTP-only cookie carrying the signed session token.
const sessionCookie = "token"

func userIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func requestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

// RequestID tags each request with an id, honoring one supplied by the caller.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Logger emits one structured line per request and recovers panics into a 500.
func Logger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("request_id", requestIDFromContext(r.Context())).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Interface("panic", rec).
						Msg("request panicked")
					respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
					return
				}

				logger.Info().
					Str("request_id", requestIDFromContext(r.Context())).
					Str("user_id", userIDFromContext(r.Context())).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Int("status", recorder.status).
					Dur("elapsed", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(recorder, r)
		})
	}
}

// Authenticator verifies the session cookie and puts the user id in context.
// Requests without a valid token are rejected before reaching a handler.
func Authenticator(maker *token.JWTMaker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
				return
			}

			claims, err := maker.Verify(cookie.Value)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

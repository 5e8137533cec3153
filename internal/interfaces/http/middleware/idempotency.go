package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotency-Replayed"
	maxIdempotencyKeyLength   = 255
)

// IdempotencyConfig holds configuration for the Idempotency-Key middleware
type IdempotencyConfig struct {
	// Store keeps reservations and completed responses
	Store shared.IdempotencyStore
	// TTL is how long a key is remembered
	TTL time.Duration
	// Logger for middleware logging
	Logger *zap.Logger
}

// responseRecorder tees the handler's response body so it can be stored for replay
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency returns a middleware that makes a non-idempotent route safe to retry.
//
// The first request carrying a given Idempotency-Key runs normally and its
// response (anything below 500) is stored. A retry with the same key, method,
// path and actor gets the stored response back with Idempotency-Replayed: true.
// A retry that arrives while the first request is still running gets 409.
// Requests without the header are not affected. Store failures are logged and
// the request proceeds without replay protection.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeValidation,
				"Idempotency-Key must be at most 255 characters",
				getRequestID(c),
			))
			return
		}

		scoped := scopeIdempotencyKey(c, key)
		ctx := c.Request.Context()

		stored, err := cfg.Store.Lookup(ctx, scoped)
		if err != nil {
			log.Warn("Idempotency lookup failed, proceeding without replay protection",
				zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if stored != nil {
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		reserved, err := cfg.Store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Warn("Idempotency reservation failed, proceeding without replay protection",
				zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeConflict,
				"A request with this Idempotency-Key is still being processed",
				getRequestID(c),
			))
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		// The outcome is recorded even if the client has gone away
		saveCtx := context.WithoutCancel(ctx)
		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			if err := cfg.Store.Release(saveCtx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}

		resp := shared.IdempotentResponse{
			StatusCode:  status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		if err := cfg.Store.Complete(saveCtx, scoped, resp, ttl); err != nil {
			log.Warn("Failed to store idempotent response", zap.String("key", key), zap.Error(err))
		}
	}
}

// scopeIdempotencyKey binds a client key to the route and actor so that the
// same key sent to another budget or by another user is a different request
func scopeIdempotencyKey(c *gin.Context, key string) string {
	actor := GetJWTUserID(c)
	if actor == "" && !JWTEnforced(c) {
		actor = c.GetHeader("X-User-ID")
	}
	return c.Request.Method + " " + c.Request.URL.Path + "|" + actor + "|" + key
}

package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/apperror"
	appctx "docflow/internal/core/context"
	"docflow/internal/infrastructure/storage/postgres"
)

const (
	HeaderIdempotencyKey = "X-Idempotency-Key"

	ContextIdempotencyKey   = "idempotency_key"
	ContextIdempotencyStore = "idempotency_store"
)

const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

// IdempotencyStore is implemented by postgres.IdempotencyStore.
type IdempotencyStore interface {
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*postgres.IdempotencyReplay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// Idempotency middleware protects against duplicate requests.
// Used for POST/PUT/PATCH operations that should be idempotent.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		userID := appctx.GetUserID(c.Request.Context())

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, _ := io.ReadAll(limited)
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		// Operation name from the route, so /invoices/:id/payments is one operation
		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.AcquireKey(c.Request.Context(), key, userID, operation, requestHash)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
				c.Abort()
				return
			}
			_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			c.Abort()
			return
		}

		if replay != nil {
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ContextIdempotencyKey, key)
		c.Set(ContextIdempotencyStore, store)

		c.Next()
	}
}

// CompleteIdempotency records a successful response for replay. It is a
// no-op when the request carried no key.
func CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key, exists := c.Get(ContextIdempotencyKey)
	if !exists {
		return
	}
	store, ok := c.Get(ContextIdempotencyStore)
	if !ok {
		return
	}
	if s, ok := store.(IdempotencyStore); ok && s != nil {
		_ = s.CompleteKey(c.Request.Context(), key.(string), statusCode, contentType, response)
	}
}

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	defaultTTL        = 24 * time.Hour
)

// IdempotencyOptions configures IdempotencyMiddleware.
type IdempotencyOptions struct {
	KeyPrefix string
	TTL       time.Duration
}

// storedResponse is what gets kept in Redis under an idempotency key.
type storedResponse struct {
	Fingerprint string          `json:"fingerprint"`
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// captureWriter tees the response body so it can be stored after the handler runs.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a POST or PUT is
// repeated with the same Idempotency-Key and body. Reusing a key with a
// different body is rejected with 422. A nil client disables it.
func IdempotencyMiddleware(client *redis.Client, opts IdempotencyOptions) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}

	return func(c *gin.Context) {
		if client == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		fingerprint := uuid.NewSHA1(uuid.NameSpaceOID, body).String()

		ctx := c.Request.Context()
		// Scoped by method and path so a key cannot replay another trip's response.
		storeKey := opts.KeyPrefix + "fleet:idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		stored, err := loadResponse(ctx, client, storeKey)
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			log.Printf("[IDEMPOTENCY] lookup failed: %v", err)
			c.Next()
			return
		case stored.Fingerprint != fingerprint:
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency key reused with a different request body"})
			return
		default:
			c.Header(replayedHeader, "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// Conflicts are left uncached so a retry with a fresh version can succeed.
		status := w.Status()
		if status < 200 || status >= 500 || status == http.StatusConflict {
			return
		}

		resp := storedResponse{
			Fingerprint: fingerprint,
			StatusCode:  status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}
		if err := saveResponse(ctx, client, storeKey, &resp, opts.TTL); err != nil {
			log.Printf("[IDEMPOTENCY] store failed: %v", err)
		}
	}
}

func loadResponse(ctx context.Context, client *redis.Client, key string) (*storedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func saveResponse(ctx context.Context, client *redis.Client, key string, resp *storedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/presentation/http/dto/response"
	"github.com/sirupsen/logrus"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	maxIdempotencyKeyLength = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Log  logrus.FieldLogger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a client retries a POST with
// the same Idempotency-Key. Keys are scoped to the customer, or to the client
// address for guests. Reusing a key with a different body is rejected.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Failed to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		scope := ByCustomer(c)
		log := config.Log.WithFields(logrus.Fields{"scope": scope, "idempotency_key": idempotencyKey})

		existing, err := config.Repo.GetByKey(c.Request.Context(), scope, idempotencyKey)
		if err != nil {
			log.WithError(err).Warn("Idempotency lookup failed, processing request")
			c.Next()
			return
		}

		if existing != nil && existing.IsExpired() {
			// Not yet purged; clear it so this response can take its place.
			if err := config.Repo.DeleteByKey(c.Request.Context(), scope, idempotencyKey); err != nil {
				log.WithError(err).Warn("Failed to clear expired idempotency key")
			}
			existing = nil
		}

		if existing != nil {
			if existing.RequestHash != requestHash {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only successful responses are replayed; failures may be retried.
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			Scope:        scope,
			Endpoint:     c.Request.Method + " " + c.FullPath(),
			RequestHash:  requestHash,
			ResponseCode: c.Writer.Status(),
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
			log.WithError(err).Warn("Failed to store idempotency key")
		}
	}
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cafe/backend/internal/infrastructure/cache"
	"github.com/cafe/backend/internal/infrastructure/logger"
	"github.com/cafe/backend/internal/interfaces/http/dto"
)

const (
	// IdempotencyKeyHeader is the client-supplied key for a write request
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the store
	IdempotentReplayHeader = "Idempotent-Replayed"
	// MaxIdempotencyKeyLength bounds client keys
	MaxIdempotencyKeyLength = 255

	ErrCodeIdempotencyInProgress = "IDEMPOTENCY_KEY_IN_PROGRESS"
	ErrCodeIdempotencyKeyReused  = "IDEMPOTENCY_KEY_REUSED"
)

// Idempotency replays the first response of a POST carrying an
// Idempotency-Key header. A retry with the same key and body gets the stored
// response; the same key with a different body is rejected with 422, and a
// retry while the first request is still running gets 409. Responses with a
// 5xx status are not stored so the client can retry. Store failures are
// logged and the request proceeds unguarded.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		requestID := GetRequestID(c)
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest,
				"Idempotency-Key must be at most 255 characters", requestID))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrCodeTooLarge,
					"Request body exceeds maximum allowed size", requestID))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest,
				"Unable to read request body", requestID))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		log := logger.GetGinLogger(c).With(zap.String("idempotency_key", key))
		ctx := c.Request.Context()
		storeKey := c.Request.Method + " " + c.Request.URL.Path + " " + key
		fingerprint := fingerprintOf(body)

		existing, err := store.Reserve(ctx, storeKey, fingerprint, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing without replay protection", zap.Error(err))
			c.Next()
			return
		}
		if existing != nil {
			respondExisting(c, existing, fingerprint, requestID)
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() >= http.StatusInternalServerError {
			if err := store.Release(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}
		if err := store.Complete(ctx, storeKey, cache.IdempotencyRecord{
			Fingerprint: fingerprint,
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}, ttl); err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func respondExisting(c *gin.Context, existing *cache.IdempotencyRecord, fingerprint, requestID string) {
	switch {
	case existing.Fingerprint != fingerprint:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(ErrCodeIdempotencyKeyReused,
			"Idempotency-Key was already used with a different request body", requestID))
	case !existing.Completed:
		c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(ErrCodeIdempotencyInProgress,
			"A request with this Idempotency-Key is still being processed", requestID))
	default:
		c.Header(IdempotentReplayHeader, "true")
		contentType := existing.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Data(existing.Status, contentType, existing.Body)
		c.Abort()
	}
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// recordingWriter tees the response body so it can be stored after the handler runs
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

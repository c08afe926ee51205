package transport

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	portidem "github.com/MustafaBasol/crm-sub007/internal/port/idempotency"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

const (
	HeaderTenantID       = "X-Tenant-ID"
	HeaderUserID         = "X-User-ID"
	HeaderUserRole       = "X-User-Role"
	HeaderUserName       = "X-User-Name"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// noisyPaths are high-frequency read paths logged at Debug to keep Info clean.
var noisyPaths = map[string]bool{
	"/api/crm/board": true,
	"/api/ws":        true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == http.MethodOptions {
			return
		}

		level := slog.LevelInfo
		if c.Request.Method == http.MethodGet && noisyPaths[c.Request.URL.Path] {
			level = slog.LevelDebug
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	allowed := strings.Join([]string{
		"Content-Type", "Authorization",
		HeaderTenantID, HeaderUserID, HeaderUserRole, HeaderUserName, HeaderIdempotencyKey,
	}, ", ")
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowed)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ActorMiddleware resolves the acting user from the identity headers set by
// the upstream auth proxy. Role defaults to member.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawTenant := c.GetHeader(HeaderTenantID)
		rawUser := c.GetHeader(HeaderUserID)
		if rawTenant == "" || rawUser == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity headers"})
			return
		}
		tenantID, err := uuid.Parse(rawTenant)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + HeaderTenantID})
			return
		}
		userID, err := uuid.Parse(rawUser)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + HeaderUserID})
			return
		}
		role := actor.RoleMember
		if raw := c.GetHeader(HeaderUserRole); raw != "" {
			if role, err = actor.ParseRole(raw); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		httpx.SetActor(c, actor.Actor{
			ID:       userID,
			TenantID: tenantID,
			Role:     role,
			Name:     c.GetHeader(HeaderUserName),
		})
		c.Next()
	}
}

// bodyRecorder tees the response body so it can be stored for replay.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key on POST requests. Responses with a 5xx status are not
// stored so the client can retry. Must run after ActorMiddleware.
func IdempotencyMiddleware(store portidem.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		a, ok := httpx.Actor(c)
		if c.Request.Method != http.MethodPost || key == "" || !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		rec, found, err := store.Check(ctx, a.TenantID, key)
		if err != nil {
			slog.WarnContext(ctx, "idempotency check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if found {
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.StatusCode, "application/json; charset=utf-8", rec.Body)
			c.Abort()
			return
		}

		w := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		op := c.Request.Method + " " + c.FullPath()
		if err := store.Save(ctx, a.TenantID, key, op, portidem.Record{
			StatusCode: status,
			Body:       w.buf.Bytes(),
		}, ttl); err != nil {
			slog.WarnContext(ctx, "idempotency save failed", "key", key, "error", err)
		}
	}
}

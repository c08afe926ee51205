// Package httpx holds the helpers every CRM handler package shares: the
// actor stored by the actor middleware, error-to-status mapping and
// optional JSON fields.
package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

const actorKey = "crm.actor"

func SetActor(c *gin.Context, a actor.Actor) { c.Set(actorKey, a) }

// Actor returns the actor the middleware stored. ok is false on routes that
// do not run the middleware.
func Actor(c *gin.Context) (actor.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return actor.Actor{}, false
	}
	a, ok := v.(actor.Actor)
	return a, ok
}

// MustActor is Actor for handlers mounted behind the actor middleware.
func MustActor(c *gin.Context) actor.Actor {
	a, _ := Actor(c)
	return a
}

// Status maps the apperr taxonomy onto HTTP status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConfiguration), errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": "..."} with the mapped status.
func Error(c *gin.Context, err error) {
	status := Status(err)
	body := gin.H{"error": err.Error()}
	if errors.Is(err, apperr.ErrConfiguration) {
		body["code"] = "configuration"
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, body)
}

// ParamID parses the :name path parameter, writing 400 on failure.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// QueryID parses an optional uuid query parameter, writing 400 when present
// but malformed.
func QueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &id, true
}

// Optional tells an absent JSON field apart from an explicit null. Set is
// true whenever the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Cleared reports an explicit null.
func (o Optional[T]) Cleared() bool { return o.Set && o.Value == nil }

// PatchText maps an optional string onto the text patch convention: nil when
// absent, empty for an explicit null.
func PatchText(o Optional[string]) *string {
	if !o.Set {
		return nil
	}
	if o.Value == nil {
		empty := ""
		return &empty
	}
	return o.Value
}

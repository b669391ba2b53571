package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/lawdesk/internal/application/service"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

const (
	// UserIDHeader names the already-authenticated caller
	UserIDHeader = "X-User-ID"

	actorKey   = "actor"
	actorIDKey = "actor_id"
)

// actorMiddleware resolves the caller named by X-User-ID. Authentication happens upstream.
func actorMiddleware(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			abortWithError(c, apperror.New(apperror.CodeUnauthorized, "missing "+UserIDHeader+" header"))
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, apperror.New(apperror.CodeUnauthorized, "malformed "+UserIDHeader+" header"))
			return
		}

		actor, err := users.ResolveActor(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Set(actorIDKey, actor.ID)
		c.Next()
	}
}

// actorFrom returns the caller resolved by actorMiddleware
func actorFrom(c *gin.Context) entity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(entity.Actor); ok {
			return actor
		}
	}
	return entity.Actor{}
}

package auth

import (
	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/logger"
	"github.com/gin-gonic/gin"
)

const identityContextKey = "vaultIdentity"

// Middleware resolves the caller identity before any handler touches a store
// and rejects the request with 401 when none can be resolved.
func Middleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		c.Set(identityContextKey, id)
		c.Set(logger.UserIDKey, id.Subject)
		c.Next()
	}
}

// CurrentIdentity extracts the authenticated identity from the context.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := value.(Identity)
	return id, ok && id.Subject != ""
}

// RequireUser returns the caller's subject, writing a 401 when absent.
func RequireUser(c *gin.Context) (string, bool) {
	id, ok := CurrentIdentity(c)
	if !ok {
		apperr.Respond(c, ErrUnauthorized.WithDetail("missing identity"))
		return "", false
	}
	return id.Subject, true
}

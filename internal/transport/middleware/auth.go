package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/event-registration/internal/entity"
	"github.com/campushub/event-registration/internal/service"
)

const identityKey = "identity"

// Authenticate resolves the bearer token into an Identity and stores it in
// the request context. The resolved pair is the only identity information
// anything downstream ever sees; handlers never touch the raw token.
func Authenticate(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
			return
		}

		identity, err := auth.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
			return
		}

		c.Set(identityKey, *identity)
		c.Next()
	}
}

// RequireRole rejects callers whose resolved role is not in the allowed
// set. It runs after Authenticate, so a missing identity is a 401 there,
// never a 500 here.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": entity.ErrForbidden.Error()})
	}
}

func IdentityFromContext(c *gin.Context) (entity.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return entity.Identity{}, false
	}
	identity, ok := value.(entity.Identity)
	return identity, ok
}

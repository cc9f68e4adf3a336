package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jjc-attendance/internal/locale"
)

const identityKey = "identity"

// Resolve puts the caller identity into the gin context. The session cookie
// wins; a bearer JWT is consulted only when no session login exists. Invalid
// tokens are ignored here and surface later as a missing identity.
func Resolve(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := GetLoginUser(c); id != nil {
			c.Set(identityKey, id)
			c.Next()
			return
		}
		authz := c.GetHeader("Authorization")
		if len(authz) > len("bearer ") && strings.EqualFold(authz[:len("bearer ")], "bearer ") {
			tokenStr := strings.TrimSpace(authz[len("bearer "):])
			if claims, err := Parse(tokenStr, signingKey, issuer); err == nil {
				id := claims.Identity()
				c.Set(identityKey, &id)
			}
		}
		c.Next()
	}
}

// Current returns the identity resolved for this request, or nil.
func Current(c *gin.Context) *Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

// RequireAuth rejects requests without an identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Current(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": locale.FromContext(c).Message("auth.loginRequired")})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It expects RequireAuth to run first.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": locale.FromContext(c).Message("auth.adminOnly")})
			return
		}
		c.Next()
	}
}

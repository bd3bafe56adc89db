package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-storefront/internal/core/auth"
)

// Context keys set by AuthJWT for downstream handlers.
const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyEmail  = "email"
	KeyRole   = "role"
)

// SessionCookie carries the token for browser page requests; API clients use
// the Authorization header.
const SessionCookie = "session"

func tokenFrom(c *gin.Context) string {
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimPrefix(ah, "Bearer ")
	}
	if tok, err := c.Cookie(SessionCookie); err == nil {
		return tok
	}
	return ""
}

// AuthJWT decodes the session token, backfilling a missing role claim
// through src, and rejects the request when requireRole is not met.
func AuthJWT(j *auth.JWTer, src auth.RoleSource, requireRole auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFrom(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := j.ParseWithRole(c.Request.Context(), tok, src)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if requireRole != "" && auth.ParseRole(claims.Role) != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.Subject)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

// Claims returns the decoded session claims set by AuthJWT or Gate.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

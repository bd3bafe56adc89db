package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"go-storefront/internal/core/auth"
)

// SignInPath is where the gate sends unauthenticated browsers.
const SignInPath = "/sign-in"

// Gate protects browser-facing pages. Unlike AuthJWT it never answers with a
// JSON 401: requests without a valid session are redirected to sign-in with
// the originally requested path (and query) preserved in callbackUrl, so the
// sign-in flow can return the user to their destination.
func Gate(j *auth.JWTer, src auth.RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFrom(c)
		if tok != "" {
			if claims, err := j.ParseWithRole(c.Request.Context(), tok, src); err == nil {
				c.Set(KeyClaims, claims)
				c.Set(KeyUserID, claims.Subject)
				c.Set(KeyEmail, claims.Email)
				c.Set(KeyRole, claims.Role)
				c.Next()
				return
			}
		}

		target := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			target += "?" + raw
		}
		q := url.Values{}
		q.Set("callbackUrl", target)
		c.Redirect(http.StatusFound, SignInPath+"?"+q.Encode())
		c.Abort()
	}
}

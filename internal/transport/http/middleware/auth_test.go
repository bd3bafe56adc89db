package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-storefront/internal/core/auth"
)

type staticRoles map[string]string

func (s staticRoles) RoleByEmail(_ context.Context, email string) (string, error) {
	return s[email], nil
}

func newJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "storefront-test", TTL: time.Hour}
}

func issue(t *testing.T, j *auth.JWTer, role string) string {
	t.Helper()
	tok, err := j.Issue(auth.Identity{ID: "u1", Email: "jane@example.com", Name: "Jane", Role: role})
	require.NoError(t, err)
	return tok
}

func gateRouter(j *auth.JWTer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	dash := r.Group("/dashboard", Gate(j, staticRoles{}))
	dash.GET("", func(c *gin.Context) {
		claims, _ := Claims(c)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	dash.GET("/profile", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestGateRedirectsAnonymousWithCallback(t *testing.T) {
	r := gateRouter(newJWTer())

	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain page", "/dashboard", "/sign-in?callbackUrl=%2Fdashboard"},
		{"nested page", "/dashboard/profile", "/sign-in?callbackUrl=%2Fdashboard%2Fprofile"},
		{"query preserved", "/dashboard?tab=stats", "/sign-in?callbackUrl=%2Fdashboard%3Ftab%3Dstats"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusFound, w.Code)
			require.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestGateAdmitsValidSession(t *testing.T) {
	j := newJWTer()
	r := gateRouter(j)

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, j, "user"))
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "jane@example.com")
	})

	t.Run("session cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: issue(t, j, "user")})
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage token still redirects", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-jwt"})
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusFound, w.Code)
	})
}

func TestAuthJWTRoleEnforcement(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := newJWTer()
	r := gin.New()
	r.POST("/api/products", AuthJWT(j, staticRoles{}, auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	do := func(token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusUnauthorized, do("").Code)
	require.Equal(t, http.StatusUnauthorized, do("garbage").Code)
	require.Equal(t, http.StatusForbidden, do(issue(t, j, "user")).Code)
	require.Equal(t, http.StatusCreated, do(issue(t, j, "admin")).Code)
}

func TestAuthJWTBackfillsRoleFromDirectory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := newJWTer()
	r := gin.New()
	r.GET("/admin", AuthJWT(j, staticRoles{"jane@example.com": "admin"}, auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Token minted without a role claim; the directory says admin.
	tok := issue(t, j, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftnest/storefront/configs"
	"github.com/giftnest/storefront/internal/adapter/http/middleware"
)

func securityTestConfig() configs.Config {
	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "storefront"
	cfg.Security.Audience = "storefront-clients"
	cfg.Security.TTL = 30 * time.Minute
	return cfg
}

func issueToken(t *testing.T, r *gin.Engine, clientID, clientSecret, userID string) (string, int) {
	t.Helper()
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	if userID != "" {
		form.Set("user_id", userID)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return "", w.Code
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken, w.Code
}

func tokenTestRouter(cfg configs.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	th := NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)

	r := gin.New()
	r.POST("/v1/token", th.IssueToken)
	r.GET("/v1/whoami", authz.Require("cart.read"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": middleware.UserID(c)})
	})
	r.GET("/v1/admin", authz.Require("admin.write"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestIssueToken_ThenAuthorize(t *testing.T) {
	r := tokenTestRouter(securityTestConfig())

	token, code := issueToken(t, r, "web-store", "web-store-secret", "u1")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)
}

func TestIssueToken_BadCredentials(t *testing.T) {
	r := tokenTestRouter(securityTestConfig())

	_, code := issueToken(t, r, "web-store", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	_, code = issueToken(t, r, "no-such-client", "x", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthz_MissingPermissionIs403(t *testing.T) {
	r := tokenTestRouter(securityTestConfig())

	token, _ := issueToken(t, r, "web-store", "web-store-secret", "u1")
	req := httptest.NewRequest(http.MethodGet, "/v1/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthz_NoTokenIs401(t *testing.T) {
	r := tokenTestRouter(securityTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthz_TokenFromOtherIssuerRejected(t *testing.T) {
	issuing := securityTestConfig()
	verifying := securityTestConfig()
	verifying.Security.Issuer = "someone-else"

	issuer := tokenTestRouter(issuing)
	verifier := tokenTestRouter(verifying)

	token, _ := issueToken(t, issuer, "web-store", "web-store-secret", "u1")
	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	verifier.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

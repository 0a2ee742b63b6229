package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmatlas/filmatlas/internal/tokens"
)

func testIssuer(t *testing.T) *tokens.Issuer {
	t.Helper()
	iss, err := tokens.NewIssuer("bearer-secret", "refresh-secret")
	require.NoError(t, err)
	return iss
}

func authRouter(iss *tokens.Issuer) *gin.Engine {
	r := gin.New()
	r.GET("/protected", Auth(iss), func(c *gin.Context) {
		p, _ := Principal(c)
		c.JSON(200, gin.H{"sub": p.UserID, "email": p.Email})
	})
	r.GET("/optional", OptionalAuth(iss), func(c *gin.Context) {
		_, ok := Principal(c)
		c.JSON(200, gin.H{"authenticated": ok})
	})
	return r
}

func doGet(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	r := authRouter(testIssuer(t))

	w := doGet(r, "/protected", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Authorization header ('Bearer token') not found", body["message"])
}

func TestAuthMalformedHeader(t *testing.T) {
	iss := testIssuer(t)
	r := authRouter(iss)

	token, err := iss.IssueBearer("u1", "u1@example.com", time.Minute)
	require.NoError(t, err)

	// missing scheme, wrong scheme, scheme without token, extra parts:
	// all get the same response as a missing header
	for _, h := range []string{token, "Basic " + token, "Bearer ", "Bearer", "Bearer a b", "Bearer " + token + " extra"} {
		w := doGet(r, "/protected", h)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", h)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Authorization header ('Bearer token') not found", body["message"], "header %q", h)
	}
}

func TestAuthValidToken(t *testing.T) {
	iss := testIssuer(t)
	r := authRouter(iss)

	token, err := iss.IssueBearer("u1", "u1@example.com", time.Minute)
	require.NoError(t, err)

	w := doGet(r, "/protected", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["sub"])
	assert.Equal(t, "u1@example.com", body["email"])
}

func TestAuthExpiredToken(t *testing.T) {
	iss := testIssuer(t)
	r := authRouter(iss)

	token, err := iss.IssueBearer("u1", "u1@example.com", -time.Minute)
	require.NoError(t, err)

	w := doGet(r, "/protected", "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Token expired", body["message"])
	assert.Equal(t, true, body["expired"])
}

func TestAuthInvalidToken(t *testing.T) {
	r := authRouter(testIssuer(t))

	w := doGet(r, "/protected", "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid JWT token", body["message"])
	_, hasExpired := body["expired"]
	assert.False(t, hasExpired)
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	iss := testIssuer(t)
	r := authRouter(iss)

	refresh, err := iss.IssueRefresh("u1", time.Minute)
	require.NoError(t, err)

	w := doGet(r, "/protected", "Bearer "+refresh)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	iss := testIssuer(t)
	r := authRouter(iss)

	// anonymous passes through
	w := doGet(r, "/optional", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])

	// valid token is picked up
	token, err := iss.IssueBearer("u1", "u1@example.com", time.Minute)
	require.NoError(t, err)
	w = doGet(r, "/optional", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])

	// provided-but-bad token is still rejected
	w = doGet(r, "/optional", "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

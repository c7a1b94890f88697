package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlane/admission-service/pkg/response"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/users/:userId/requests", Auth(secret), RequireSelf("userId"), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestAuthValidToken(t *testing.T) {
	router := authRouter(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/requests", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthSubjectClaimFallback(t *testing.T) {
	router := authRouter(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/requests", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	router := authRouter(testSecret)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer token", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{
			name: "wrong secret",
			header: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"user_id": "user-1",
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired token",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"user_id": "user-1",
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "no user identity",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/user-1/requests", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "UNAUTHORIZED", errorCode(t, w.Body.Bytes()))
		})
	}
}

func TestRequireSelfBlocksOtherUsers(t *testing.T) {
	router := authRouter(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-2/requests", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w.Body.Bytes()))
}

func TestRequireSelfWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// RequireSelf without Auth upstream: no identity in context
	router.GET("/users/:userId/requests", RequireSelf("userId"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/requests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(ContextKeyUserID, "user-1")
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)
}

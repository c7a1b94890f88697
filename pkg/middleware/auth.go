package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/eventlane/admission-service/pkg/response"
)

const (
	// ContextKeyUserID is the gin context key holding the authenticated user id
	ContextKeyUserID = "user_id"
	// AuthorizationHeader is the header carrying the bearer token
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Auth validates the bearer token and stores the user id in the context
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthorizationHeader)
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewError("UNAUTHORIZED", "missing or malformed authorization header"))
			return
		}

		tokenString := strings.TrimPrefix(header, bearerPrefix)

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewError("UNAUTHORIZED", "invalid or expired token"))
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			// Fall back to the subject claim
			userID, _ = claims["sub"].(string)
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewError("UNAUTHORIZED", "token has no user identity"))
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID extracts the authenticated user id from gin context
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

// RequireSelf ensures the authenticated user matches the path user id.
// Moderation and cancellation are requester/owner scoped, so acting on
// behalf of another user is rejected outright.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewError("UNAUTHORIZED", "authentication required"))
			return
		}
		if pathID := c.Param(param); pathID != "" && pathID != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, response.NewError("FORBIDDEN", "cannot act on behalf of another user"))
			return
		}
		c.Next()
	}
}

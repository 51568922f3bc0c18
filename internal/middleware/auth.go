package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/auth"
	"github.com/hostelhub/hostel-service/internal/models"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// TokenVerifier verifies bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message": message,
		"code":    code,
	})
}

func bearerToken(c *gin.Context) (string, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", auth.ErrNoToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
}

// Authenticate requires a valid bearer token and stores the caller's id and
// role in the gin context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err == nil {
			var claims *auth.Claims
			claims, err = verifier.Verify(token)
			if err == nil {
				setIdentity(c, claims)
				c.Next()
				return
			}
		}

		message := "Invalid token"
		switch {
		case errors.Is(err, auth.ErrNoToken):
			message = "No token, authorization denied"
		case errors.Is(err, auth.ErrExpiredToken):
			message = "Token expired"
		}
		abortWithError(c, http.StatusUnauthorized, "unauthorized", message)
	}
}

// OptionalAuthenticate sets the identity when a valid token is present and
// lets the request through either way.
func OptionalAuthenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := bearerToken(c); err == nil {
			if claims, err := verifier.Verify(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole must run after Authenticate. A missing identity is 401, a role
// outside roles is 403.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
			return
		}
		if _, permitted := allowed[role]; !permitted {
			abortWithError(c, http.StatusForbidden, "forbidden", "Access denied")
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's id
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

// GetUserRole returns the authenticated caller's role
func GetUserRole(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}

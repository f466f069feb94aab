package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
)

const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"

	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
)

// TokenValidator checks access tokens. A disabled validator leaves every
// request anonymous.
type TokenValidator interface {
	Enabled() bool
	ValidateAccessToken(token string) (*domain.UserClaims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
	}
}

// Authenticate resolves the caller from an optional bearer token. Requests
// without Authorization pass through anonymous; a token that is present but
// invalid is rejected.
func (a *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.validator.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader(HeaderAuthorization)
		if header == "" {
			c.Next()
			return
		}

		tokenString := extractBearerToken(header)
		if tokenString == "" {
			_ = c.Error(fmt.Errorf("%w: expected a bearer token", domain.ErrUnauthorized))
			c.Abort()
			return
		}

		claims, err := a.validator.ValidateAccessToken(tokenString)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: %v", domain.ErrUnauthorized, err))
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, claims)
		c.Set(ContextKeyUserID, claims.Subject)

		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			_ = c.Error(fmt.Errorf("%w: missing authorization token", domain.ErrUnauthorized))
			c.Abort()
			return
		}
		c.Next()
	}
}

func UserFromContext(c *gin.Context) (*domain.UserClaims, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.UserClaims)
	return claims, ok && claims != nil
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/jwt"
)

const testSecret = "middleware-secret"

func generateAccessToken(t *testing.T, secret string, sub any, exp time.Time) string {
	t.Helper()
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":   sub,
		"email": "teacher@example.com",
		"role":  "TEACHER",
		"iat":   time.Now().Unix(),
		"exp":   exp.Unix(),
	})
	tokenString, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return tokenString
}

func authRouter(validator TokenValidator, guards ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(ErrorEnvelope())
	router.Use(NewAuthMiddleware(validator).Authenticate())
	handlers := append(guards, func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		userID, _ := c.Get(ContextKeyUserID)
		c.JSON(http.StatusOK, gin.H{"sub": user.Subject, "user_id": userID, "role": user.Role})
	})
	router.GET("/test", handlers...)
	return router
}

func TestAuthenticate_NoHeaderIsAnonymous(t *testing.T) {
	router := authRouter(jwt.NewService(testSecret, ""))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
}

func TestAuthenticate_ValidTokenSetsUser(t *testing.T) {
	router := authRouter(jwt.NewService(testSecret, ""))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+generateAccessToken(t, testSecret, 12, time.Now().Add(time.Hour)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":12,"user_id":12,"role":"TEACHER"}`, w.Body.String())
}

func TestAuthenticate_InvalidTokenIsRejected(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"expired", "Bearer " + generateAccessToken(t, testSecret, 1, time.Now().Add(-time.Hour))},
		{"wrong secret", "Bearer " + generateAccessToken(t, "other", 1, time.Now().Add(time.Hour))},
		{"garbage", "Bearer not-a-jwt"},
		{"not bearer", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authRouter(jwt.NewService(testSecret, ""))

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.header)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
			assert.Equal(t, "/test", body.Path)
			assert.Contains(t, body.Error, "unauthorized")
		})
	}
}

func TestAuthenticate_DisabledValidatorIgnoresTokens(t *testing.T) {
	router := authRouter(jwt.NewService("", ""))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
}

func TestRequireUser(t *testing.T) {
	router := authRouter(jwt.NewService(testSecret, ""), RequireUser())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+generateAccessToken(t, testSecret, "3", time.Now().Add(time.Hour)))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserFromContext_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeyUser, "not claims")

	_, ok := UserFromContext(c)
	assert.False(t, ok)

	c.Set(ContextKeyUser, &domain.UserClaims{Subject: 4})
	user, ok := UserFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, int64(4), user.Subject)
}

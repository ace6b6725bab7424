package mocks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	"spilled-server/internal/utils"
)

// MockJwtManager simulates JWT operations in tests. ValidTokens maps token
// strings to the claims the middleware should inject for them.
type MockJwtManager struct {
	mock.Mock
	ValidTokens map[string]jwt.Claims
}

func (m *MockJwtManager) GenerateJWT(claims jwt.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockJwtManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(jwt.Claims), args.Error(1)
}

func (m *MockJwtManager) GenerateClaims(userId string) jwt.Claims {
	args := m.Called(userId)
	return args.Get(0).(jwt.Claims)
}

func (m *MockJwtManager) GenerateRefreshClaims(userId string) jwt.Claims {
	args := m.Called(userId)
	return args.Get(0).(jwt.Claims)
}

func (m *MockJwtManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len("Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		token := header[len("Bearer "):]
		claims, ok := m.ValidTokens[token]
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}

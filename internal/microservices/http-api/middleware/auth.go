package middleware

import (
	"net/http"
	"strings"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/service"
	adminauth "djrating/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

// AdminKeyHeader carries the plaintext operator key for /admin routes.
const AdminKeyHeader = "X-Admin-Key"

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Envelope{Message: message, Code: code})
}

// AuthMiddleware is a Gin middleware for JWT authentication of API requests
// It checks for the presence and validity of a JWT token in the Authorization header
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, service.ErrInvalidToken.Code, "missing authorization header")
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, service.ErrInvalidToken.Code, "invalid authorization header format")
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, service.ErrInvalidToken.Code, "invalid token")
			return
		}

		// Set user info in context for handlers to use
		c.Set("claims", claims)
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireAdminKey guards operator routes with a shared key checked against
// its bcrypt hash. An empty hash disables the routes entirely.
func RequireAdminKey(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			abort(c, http.StatusForbidden, service.ErrNotOwner.Code, "admin access is not configured")
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" || adminauth.VerifyAdminKey(keyHash, key) != nil {
			abort(c, http.StatusUnauthorized, service.ErrInvalidCredentials.Code, "invalid admin key")
			return
		}

		c.Set("role", "admin")
		c.Next()
	}
}

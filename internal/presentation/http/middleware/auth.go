package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewline-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewline-api/pkg/utils"
)

// Context keys set by the auth middlewares.
const (
	CustomerIDKey    = "customer_id"
	CustomerNameKey  = "customer_name"
	CustomerEmailKey = "customer_email"
	CustomerRoleKey  = "customer_role"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware tries to authenticate but doesn't fail if no token is provided
func OptionalAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CustomerRoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}

// bearerToken reads "Bearer <token>" from the Authorization header. Browsers
// cannot set headers on websocket upgrades, so access_token is accepted there.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if websocketUpgrade(c) {
			if token := c.Query("access_token"); token != "" {
				return token, true
			}
		}
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func websocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func setClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set(CustomerIDKey, claims.CustomerID)
	c.Set(CustomerNameKey, claims.Name)
	c.Set(CustomerEmailKey, claims.Email)
	c.Set(CustomerRoleKey, claims.Role)
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"reachround/config"
	"reachround/models"
	"reachround/utils"
)

// Protected authenticates the request from a Bearer header or the
// access_token cookie and stores the user in locals.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			// Check if it's a Bearer token
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.RespondError(c, utils.Unauthorized("Invalid authorization format"))
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return utils.RespondError(c, utils.Unauthorized("Authorization required"))
			}
		}

		// Parse and validate JWT; refresh tokens are rejected here
		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			return utils.RespondError(c, utils.Unauthorized("Invalid or expired token"))
		}

		// Find user
		var user models.User
		if err := config.DB.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
			return utils.RespondError(c, utils.Unauthorized("User not found"))
		}

		// Check if user is active
		if !user.IsActive {
			return utils.RespondError(c, utils.Forbidden("Account is not active"))
		}

		// Verify token version
		if claims.TokenVersion != user.TokenVersion {
			return utils.RespondError(c, utils.Unauthorized("Invalid token version"))
		}

		// Add user to context for controllers and the AI limiter key
		c.Locals("user", &user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

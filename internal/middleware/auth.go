package middleware

import (
	"database/sql"
	"strings"

	"taskhub/internal/auth"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CurrentUserKey is where RequireAuth leaves the resolved identity for
// downstream handlers.
const CurrentUserKey = "currentUser"

// RequireAuth builds the authentication gate: extract the bearer
// token, verify it, re-read the user row, and hand the identity to the
// handler. Every failure collapses to a generic 401 for the client;
// the precise cause (missing header, bad signature, expiry, vanished
// user) is only distinguished in the security log, so callers probing
// token validity learn nothing from the response.
func RequireAuth(db *sql.DB, tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.SecurityLogger.Warn("Auth failed: no token provided",
				zap.String("path", c.Path()))
			return unauthorized(c, "Not authenticated")
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.SecurityLogger.Warn("Auth failed: malformed Authorization header",
				zap.String("path", c.Path()))
			return unauthorized(c, "Not authenticated")
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			logger.SecurityLogger.Warn("Auth failed: token rejected",
				zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		// The user row is re-read on every request: a deleted account
		// holding a still-valid token is locked out immediately.
		user, err := repository.GetUserByID(db, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				logger.SecurityLogger.Warn("Auth failed: user not found",
					zap.Int("user_id", userID))
				return unauthorized(c, "User not found")
			}
			logger.ErrorLogger.Error("Auth failed: user lookup error", zap.Error(err))
			if repository.IsUnavailable(err) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"message": "Service temporarily unavailable",
					"success": false,
					"status":  fiber.StatusServiceUnavailable,
				})
			}
			return unauthorized(c, "Not authenticated")
		}

		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}

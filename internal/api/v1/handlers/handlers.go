package handlers

import (
	"database/sql"

	"taskhub/internal/auth"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	ws "taskhub/internal/websocket"
	"taskhub/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler carries the dependencies every endpoint needs. Everything is
// constructed once in main and passed in explicitly.
type Handler struct {
	DB       *sql.DB
	Redis    *redis.Client
	Tokens   *auth.TokenIssuer
	Validate *validator.Validate
	Hub      *ws.Hub
}

func New(db *sql.DB, rdb *redis.Client, tokens *auth.TokenIssuer, hub *ws.Hub) *Handler {
	return &Handler{
		DB:       db,
		Redis:    rdb,
		Tokens:   tokens,
		Validate: NewValidator(),
		Hub:      hub,
	}
}

// currentUser returns the identity resolved by the auth middleware.
// Routes behind RequireAuth always have it.
func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals(middleware.CurrentUserKey).(*models.User)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// storageError maps a data-access failure to 503 when the store is
// unreachable and to an opaque 500 otherwise. The detail only reaches
// the error log.
func storageError(c *fiber.Ctx, err error, what string) error {
	logger.ErrorLogger.Error(what, zap.Error(err))
	if repository.IsUnavailable(err) {
		return fail(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable")
	}
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func (h *Handler) notifyTask(userID int, eventType string, task *models.Task) {
	if h.Hub != nil {
		h.Hub.NotifyTask(userID, eventType, task)
	}
}

func (h *Handler) notifyTaskDeleted(userID, taskID int) {
	if h.Hub != nil {
		h.Hub.NotifyTaskDeleted(userID, taskID)
	}
}

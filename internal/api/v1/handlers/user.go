package handlers

import (
	"database/sql"
	"strings"

	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "User found",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    currentUser(c),
	})
}

// UpdateMe changes the caller's email and/or username. Uniqueness is
// re-checked by the storage constraints, same as registration.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	user := currentUser(c)

	type UpdateUserRequest struct {
		Email    *string `json:"email" validate:"omitempty,email,max=255"`
		Username *string `json:"username" validate:"omitempty,min=3,max=50,username"`
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update user", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in update user", zap.Error(err))
		return unprocessable(c, err)
	}

	updated, err := repository.UpdateUserProfile(h.DB, user.ID, req.Email, req.Username)
	if err != nil {
		if constraint, ok := repository.IsUniqueViolation(err); ok {
			logger.SecurityLogger.Warn("Duplicate user on profile update",
				zap.String("constraint", constraint))
			if strings.Contains(constraint, "email") {
				return fail(c, fiber.StatusBadRequest, "Email already registered")
			}
			return fail(c, fiber.StatusBadRequest, "Username already taken")
		}
		return storageError(c, err, "Error updating user")
	}

	logger.AuditLogger.Info("User updated successfully", zap.Int("user_id", updated.ID))
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    updated,
	})
}

// UpdatePreferences flips the caller's preference flags; omitted
// fields keep their current value.
func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	user := currentUser(c)

	type PreferencesRequest struct {
		DarkMode           *bool `json:"dark_mode"`
		EmailNotifications *bool `json:"email_notifications"`
		TaskReminders      *bool `json:"task_reminders"`
	}

	var req PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update preferences", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	updated, err := repository.UpdateUserPreferences(h.DB, user.ID,
		req.DarkMode, req.EmailNotifications, req.TaskReminders)
	if err != nil {
		return storageError(c, err, "Error updating preferences")
	}

	logger.AuditLogger.Info("Preferences updated", zap.Int("user_id", updated.ID))
	return c.JSON(fiber.Map{
		"message": "Preferences updated successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    updated,
	})
}

// DeleteMe removes the caller's account together with every task they
// own, as a single transaction.
func (h *Handler) DeleteMe(c *fiber.Ctx) error {
	user := currentUser(c)

	tasks, err := repository.ListTasksByUser(h.DB, user.ID)
	if err != nil {
		return storageError(c, err, "Error fetching tasks before account deletion")
	}

	if err := repository.DeleteUserCascade(h.DB, user.ID); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return storageError(c, err, "Error deleting user")
	}

	// Evict whatever was cached for the deleted tasks.
	for _, task := range tasks {
		h.dropCachedTask(c, task.ID)
	}

	logger.AuditLogger.Info("User deleted successfully",
		zap.Int("user_id", user.ID), zap.Int("tasks_removed", len(tasks)))
	return c.SendStatus(fiber.StatusNoContent)
}

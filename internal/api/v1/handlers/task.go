package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const taskCacheTTL = time.Hour

func taskCacheKey(taskID int) string {
	return fmt.Sprintf("task:%d", taskID)
}

// parseTaskID reads the :id parameter. A non-numeric id is reported
// the same way body validation failures are: a 422 naming the field.
// The second return value is false when a response was already sent.
func parseTaskID(c *fiber.Ctx) (int, bool) {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		_ = c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  []fiber.Map{{"field": "id", "message": "Task ID must be an integer"}},
			"success": false,
			"status":  fiber.StatusUnprocessableEntity,
		})
		return 0, false
	}
	return taskID, true
}

// getOwnedTask is the ownership guard shared by every /tasks/:id
// handler: load the task, 404 when absent, 403 when it belongs to
// someone else. The existence check deliberately runs first, so a
// missing id and someone else's id stay distinguishable.
func (h *Handler) getOwnedTask(c *fiber.Ctx) (*models.Task, bool) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return nil, false
	}
	return h.getOwnedTaskByID(c, taskID)
}

func (h *Handler) getOwnedTaskByID(c *fiber.Ctx, taskID int) (*models.Task, bool) {
	user := currentUser(c)

	task, err := repository.GetTaskByID(h.DB, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = fail(c, fiber.StatusNotFound, "Task not found")
			return nil, false
		}
		_ = storageError(c, err, "Error fetching task")
		return nil, false
	}

	if task.UserID != user.ID {
		logger.SecurityLogger.Warn("Forbidden task access",
			zap.Int("user_id", user.ID), zap.Int("task_id", task.ID))
		_ = fail(c, fiber.StatusForbidden, "Not authorized to access this task")
		return nil, false
	}
	return task, true
}

// cacheTask best-effort stores a task for later reads. Cache problems
// never fail the request.
func (h *Handler) cacheTask(c *fiber.Ctx, task *models.Task) {
	payload, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := h.Redis.Set(c.Context(), taskCacheKey(task.ID), payload, taskCacheTTL).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Error(err))
	}
}

func (h *Handler) dropCachedTask(c *fiber.Ctx, taskID int) {
	if err := h.Redis.Del(c.Context(), taskCacheKey(taskID)).Err(); err != nil {
		logger.ErrorLogger.Error("Error evicting cached task", zap.Error(err))
	}
}

// CreateTask stores a new task. The owner is always the authenticated
// user; a user_id in the body is ignored.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	user := currentUser(c)

	type TaskRequest struct {
		Title       string  `json:"title" validate:"required,min=1,max=200"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return unprocessable(c, err)
	}

	task, err := repository.CreateTask(h.DB, user.ID, req.Title, req.Description)
	if err != nil {
		return storageError(c, err, "Error creating task")
	}

	h.cacheTask(c, task)
	h.notifyTask(user.ID, "task_created", task)

	logger.AuditLogger.Info("Task created successfully",
		zap.Int("task_id", task.ID), zap.Int("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data":    task,
	})
}

// ListTasks returns the caller's tasks, newest first.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	user := currentUser(c)

	tasks, err := repository.ListTasksByUser(h.DB, user.ID)
	if err != nil {
		return storageError(c, err, "Error fetching tasks")
	}

	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    tasks,
	})
}

// GetTask returns a single task, serving from the cache when it can.
// The ownership check applies to cached hits as well.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, ok := parseTaskID(c)
	if !ok {
		return nil
	}

	if cached, err := h.Redis.Get(c.Context(), taskCacheKey(taskID)).Result(); err == nil {
		var task models.Task
		if err := json.Unmarshal([]byte(cached), &task); err == nil {
			if task.UserID != user.ID {
				logger.SecurityLogger.Warn("Forbidden task access",
					zap.Int("user_id", user.ID), zap.Int("task_id", task.ID))
				return fail(c, fiber.StatusForbidden, "Not authorized to access this task")
			}
			return c.JSON(fiber.Map{
				"message": "Task found",
				"success": true,
				"status":  fiber.StatusOK,
				"data":    task,
			})
		}
	}

	task, ok := h.getOwnedTaskByID(c, taskID)
	if !ok {
		return nil
	}
	h.cacheTask(c, task)

	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    task,
	})
}

// UpdateTask applies a partial update to an owned task.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	user := currentUser(c)

	task, ok := h.getOwnedTask(c)
	if !ok {
		return nil
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
		IsCompleted *bool   `json:"is_completed"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in update task", zap.Error(err))
		return unprocessable(c, err)
	}

	updated, err := repository.UpdateTask(h.DB, task.ID, req.Title, req.Description, req.IsCompleted)
	if err != nil {
		return storageError(c, err, "Error updating task")
	}

	h.dropCachedTask(c, updated.ID)
	h.cacheTask(c, updated)
	h.notifyTask(user.ID, "task_updated", updated)

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", updated.ID))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    updated,
	})
}

// ToggleTask flips the completion flag of an owned task.
func (h *Handler) ToggleTask(c *fiber.Ctx) error {
	user := currentUser(c)

	task, ok := h.getOwnedTask(c)
	if !ok {
		return nil
	}

	toggled, err := repository.ToggleTask(h.DB, task.ID)
	if err != nil {
		return storageError(c, err, "Error toggling task")
	}

	h.dropCachedTask(c, toggled.ID)
	h.cacheTask(c, toggled)
	h.notifyTask(user.ID, "task_toggled", toggled)

	logger.AuditLogger.Info("Task toggled",
		zap.Int("task_id", toggled.ID), zap.Bool("is_completed", toggled.IsCompleted))
	return c.JSON(fiber.Map{
		"message": "Task toggled successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    toggled,
	})
}

// DeleteTask removes an owned task.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	user := currentUser(c)

	task, ok := h.getOwnedTask(c)
	if !ok {
		return nil
	}

	if err := repository.DeleteTask(h.DB, task.ID); err != nil && err != sql.ErrNoRows {
		return storageError(c, err, "Error deleting task")
	}

	h.dropCachedTask(c, task.ID)
	h.notifyTaskDeleted(user.ID, task.ID)

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", task.ID))
	return c.SendStatus(fiber.StatusNoContent)
}

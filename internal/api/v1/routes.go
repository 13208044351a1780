package v1

import (
	"taskhub/internal/api/v1/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the HTTP surface. requireAuth is the
// authentication gate built in main; everything under /tasks and
// /users sits behind it.
func RegisterRoutes(app *fiber.App, h *handlers.Handler, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)

	// Tasks
	taskRoutes := api.Group("/tasks", requireAuth)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Patch("/:id/toggle", h.ToggleTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Current user
	userRoutes := api.Group("/users", requireAuth)
	userRoutes.Get("/me", h.Me)
	userRoutes.Put("/me", h.UpdateMe)
	userRoutes.Put("/me/preferences", h.UpdatePreferences)
	userRoutes.Delete("/me", h.DeleteMe)
}

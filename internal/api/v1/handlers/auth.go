package handlers

import (
	"database/sql"
	"strings"

	"taskhub/internal/repository"
	"taskhub/pkg/crypto"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Register creates a new account. Duplicate email/username is a 400,
// field-level problems are reported together as a 422.
func (h *Handler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Email    string `json:"email" validate:"required,email,max=255"`
		Username string `json:"username" validate:"required,min=3,max=50,username"`
		// bcrypt only reads the first 72 bytes, so longer input is
		// rejected up front instead of silently truncated.
		Password string `json:"password" validate:"required,min=8,max=72,password"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return unprocessable(c, err)
	}

	// Pre-insert duplicate checks give precise messages; the unique
	// constraints below remain the backstop against races.
	if _, err := repository.GetUserByEmail(h.DB, req.Email); err == nil {
		logger.SecurityLogger.Warn("Duplicate email on register", zap.String("email", req.Email))
		return fail(c, fiber.StatusBadRequest, "Email already registered")
	} else if err != sql.ErrNoRows {
		return storageError(c, err, "Error checking email on register")
	}
	if _, err := repository.GetUserByUsername(h.DB, req.Username); err == nil {
		logger.SecurityLogger.Warn("Duplicate username on register", zap.String("username", req.Username))
		return fail(c, fiber.StatusBadRequest, "Username already taken")
	} else if err != sql.ErrNoRows {
		return storageError(c, err, "Error checking username on register")
	}

	hashedPassword, err := crypto.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}

	user, err := repository.CreateUser(h.DB, req.Email, req.Username, hashedPassword)
	if err != nil {
		if constraint, ok := repository.IsUniqueViolation(err); ok {
			logger.SecurityLogger.Warn("Duplicate user on register",
				zap.String("constraint", constraint))
			if strings.Contains(constraint, "email") {
				return fail(c, fiber.StatusBadRequest, "Email already registered")
			}
			return fail(c, fiber.StatusBadRequest, "Username already taken")
		}
		return storageError(c, err, "Error creating user")
	}

	logger.AuditLogger.Info("User registered successfully",
		zap.Int("user_id", user.ID), zap.String("email", user.Email))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data":    user,
	})
}

// Login checks email + password and hands back a bearer token. Unknown
// email and wrong password produce the same response, so the caller
// cannot tell which part was wrong.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return unprocessable(c, err)
	}

	user, err := repository.GetUserByEmail(h.DB, req.Email)
	if err != nil {
		if err != sql.ErrNoRows {
			return storageError(c, err, "Error fetching user on login")
		}
		logger.SecurityLogger.Warn("Login failed: unknown email", zap.String("email", req.Email))
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		logger.SecurityLogger.Warn("Login failed: wrong password", zap.Int("user_id", user.ID))
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Login success",
		"success": true,
		"status":  fiber.StatusOK,
		"data": fiber.Map{
			"token":      token,
			"token_type": "bearer",
			"user":       user,
		},
	})
}

package main

import (
	"fmt"
	"time"

	"taskhub/configs"
	"taskhub/internal/api/v1"
	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/auth"
	"taskhub/internal/middleware"
	"taskhub/internal/repository"
	myws "taskhub/internal/websocket"
	"taskhub/pkg/database"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database connected")

	repository.CreateTableIfNotExists(db)

	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()
	logger.SystemLogger.Info("Redis connected")

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiryHours)
	if err != nil {
		logger.ErrorLogger.Error("Invalid token configuration", zap.Error(err))
		return
	}

	hub := myws.NewHub()
	go hub.Run()

	h := handlers.New(db, redisClient, tokens, hub)
	requireAuth := middleware.RequireAuth(db, tokens)

	app := fiber.New()

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1.RegisterRoutes(app, h, requireAuth)

	// Websocket task-event feed. The upgrade authenticates with the
	// same bearer token, passed as a query parameter because browsers
	// cannot set headers on websocket connections.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := tokens.Verify(c.Query("token"))
		if err != nil {
			logger.SecurityLogger.Warn("Websocket auth failed", zap.Error(err))
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("wsUserID", userID)
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client := &myws.Client{
			UserID: conn.Locals("wsUserID").(int),
			Conn:   conn,
		}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		// The feed is one-way; reading just detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))

	addr := fmt.Sprintf(":%d", cfg.ListenPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}

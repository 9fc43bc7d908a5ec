package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"face-attendance/pkg/logger"
)

// LoggerMiddleware writes one api log line per request
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		entry := logger.LogEntry{
			Level:     logger.LevelInfo,
			Category:  logger.CategoryAPI,
			Action:    "request",
			Message:   c.Method() + " " + c.Path(),
			RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
			Duration:  time.Since(start).String(),
			Data: map[string]interface{}{
				"status": status,
				"ip":     c.IP(),
			},
		}
		if status >= fiber.StatusInternalServerError {
			entry.Level = logger.LevelError
		} else if status >= fiber.StatusBadRequest {
			entry.Level = logger.LevelWarn
		}
		logger.Default().Log(entry)

		return err
	}
}

// RequestIDMiddleware tags every response with X-Request-ID
func RequestIDMiddleware() fiber.Handler {
	return requestid.New()
}

func CorsMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Token",
		AllowMethods: "GET, POST, OPTIONS",
	})
}

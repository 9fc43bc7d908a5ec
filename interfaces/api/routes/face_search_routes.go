package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-attendance/interfaces/api/handlers"
	"face-attendance/interfaces/api/middleware"
	"face-attendance/pkg/config"
)

func SetupFaceSearchRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	persons := api.Group("/persons",
		middleware.RateLimiter(cfg.RateLimit),
		middleware.Protected(cfg.JWT.Secret),
		middleware.RequirePrivilege(cfg.Privileges.Get("person.search")),
	)

	persons.Post("/search-face", h.FaceSearch.SearchFace)
	persons.Post("/search-face-camera", h.FaceSearch.SearchFaceCamera)
}

package server

import (
	"database/sql"
	"errors"
	"log"

	"voice-intake-be/internal/bootstrap"
	"voice-intake-be/internal/config"
	"voice-intake-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, frames and REST bodies are small
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/health", healthHandler(c.DB))

	// Vendor-facing voice stream
	c.VoiceHandler.Register(app)

	// Office-facing REST
	api := app.Group("/api")
	c.CallLogController.RegisterRoutes(api, serverutils.JwtMiddleware)
}

// healthHandler reports whether the database is reachable; load
// balancers pull an instance with a dead connection out of rotation.
func healthHandler(db *gorm.DB) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var err error
		if db == nil {
			err = errors.New("database not configured")
		} else {
			var sqlDB *sql.DB
			if sqlDB, err = db.DB(); err == nil {
				err = sqlDB.PingContext(ctx.Context())
			}
		}
		if err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"database": "unreachable",
			})
		}
		return ctx.JSON(fiber.Map{
			"status":   "ok",
			"database": "ok",
		})
	}
}

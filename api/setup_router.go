package api

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/SamuelLeutner/notion-acads/api/handlers"
	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/logger"
)

func SetupRouter(holder *app.Holder, handlerTimeout time.Duration) *fiber.App {
	r := fiber.New(fiber.Config{
		AppName: "notion-acads",
	})
	r.Use(requestLogger)

	r.Get("/", handlers.CreateHomeHandler(holder))
	r.Get("/ping", handlers.HandlePing)

	r.Get("/add-semester", handlers.CreateAddSemesterPageHandler(holder))
	r.Post("/add-semester-form", handlers.CreateAddSemesterFormHandler(holder, handlerTimeout))

	r.Get("/setup", handlers.CreateSetupPageHandler(holder))
	r.Post("/setup-form", handlers.CreateSetupFormHandler(holder, handlerTimeout))

	calculate := handlers.CreateCalculateCGPAHandler(holder, handlerTimeout)
	r.Get("/calculate-cgpa", calculate)
	r.Post("/calculate-cgpa", calculate)

	return r
}

func requestLogger(c fiber.Ctx) error {
	start := time.Now()
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)

	err := c.Next()

	status := c.Response().StatusCode()
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
	}
	ev := logger.Info()
	if err != nil || status >= fiber.StatusInternalServerError {
		ev = logger.Error().Err(err)
	}
	ev.Str("requestId", id).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("HTTP request")
	return err
}

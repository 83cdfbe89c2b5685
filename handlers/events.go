// handlers/events.go
package handlers

import (
	"strconv"
	"time"

	"arena-score-system/middleware"
	"arena-score-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, events *services.EventService) {
	app.Get("/events", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		list, err := events.ListEvents(c.Query("status"), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list events",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	app.Get("/events/:id", func(c *fiber.Ctx) error {
		event, err := events.GetEvent(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return c.JSON(event)
	})

	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/events", func(c *fiber.Ctx) error {
		type Req struct {
			Name      string                `json:"name"`
			Promotion string                `json:"promotion"`
			StartTime string                `json:"start_time"` // RFC3339
			Fights    []services.FightInput `json:"fights"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		startTime, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid start_time (use RFC3339)",
			})
		}
		event, err := events.CreateEvent(req.Name, req.Promotion, startTime, req.Fights)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "event creation failed",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	})
}

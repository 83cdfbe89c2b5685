// handlers/arena_routes.go
package handlers

import (
	"arena-score-system/middleware"
	"arena-score-system/models"
	"arena-score-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupArenaRoutes registers the ranking read surface (event leaderboards,
// league standings, duels) plus the admin endpoints for manual result entry and
// settlement retry.
func SetupArenaRoutes(app *fiber.App, leaderboard *services.LeaderboardService, leagues *services.LeagueService, duels *services.DuelService, settlement *services.SettlementService) {
	app.Get("/events/:id/leaderboard", func(c *fiber.Ctx) error {
		eventID := c.Params("id")
		var event models.Event
		if err := leaderboard.DB.First(&event, "id = ?", eventID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		rows, err := leaderboard.EventLeaderboard(eventID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"event_id":    event.ID,
			"event_name":  event.Name,
			"status":      event.Status,
			"leaderboard": rows,
		})
	})

	app.Get("/leagues/:id/standings", func(c *fiber.Ctx) error {
		league, members, err := leagues.Standings(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "league not found"})
		}
		return c.JSON(fiber.Map{
			"league_id":      league.ID,
			"name":           league.Name,
			"season":         league.Season,
			"champion_id":    league.ChampionID,
			"title_defenses": league.TitleDefenses,
			"standings":      members,
		})
	})

	app.Get("/duels/:id", func(c *fiber.Ctx) error {
		var duel models.Duel
		if err := duels.DB.First(&duel, "id = ?", c.Params("id")).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "duel not found"})
		}
		return c.JSON(duel)
	})

	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/user/duels", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			EventID    string `json:"event_id"`
			OpponentID string `json:"opponent_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		duel, err := duels.Challenge(req.EventID, userID, req.OpponentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "challenge rejected",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(duel)
	})

	securedGroup.Post("/user/duels/:id/respond", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			Accept bool `json:"accept"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		duel, err := duels.Respond(c.Params("id"), userID, req.Accept)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "response rejected",
				"cause": err.Error(),
			})
		}
		return c.JSON(duel)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/fights/:id/result", func(c *fiber.Ctx) error {
		type Req struct {
			Winner      string `json:"winner"`
			Method      string `json:"method"`
			EndingRound int    `json:"ending_round"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Winner == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "winner is required"})
		}
		if err := settlement.RecordFightResult(c.Params("id"), req.Winner, req.Method, req.EndingRound); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "result rejected",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "result recorded"})
	})

	// Manual retry: safe to call any number of times, the pipeline skips
	// everything already settled.
	adminGroup.Post("/settlement/run", func(c *fiber.Ctx) error {
		if err := settlement.RunCycle(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "settlement cycle failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "settlement cycle completed"})
	})

	adminGroup.Post("/leagues", func(c *fiber.Ctx) error {
		type Req struct {
			Name string `json:"name"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		league, err := leagues.CreateLeague(req.Name)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "league creation failed",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(league)
	})

	adminGroup.Post("/leagues/:id/members", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		membership, err := leagues.Join(c.Params("id"), req.UserID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "join failed",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(membership)
	})
}

// handlers/predictions.go
package handlers

import (
	"arena-score-system/middleware"
	"arena-score-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPredictionRoutes(app *fiber.App, predictions *services.PredictionService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/user/predictions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			FightID         string  `json:"fight_id"`
			PickedWinner    string  `json:"picked_winner"`
			PredictedMethod *string `json:"predicted_method,omitempty"`
			PredictedRound  *int    `json:"predicted_round,omitempty"`
			Confidence      int     `json:"confidence"`
			OddsAtPick      *int    `json:"odds_at_pick,omitempty"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.FightID == "" || req.PickedWinner == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "fight_id and picked_winner are required",
			})
		}

		prediction, err := predictions.Submit(services.SubmitInput{
			ExternalUserID:  userID,
			FightID:         req.FightID,
			PickedWinner:    req.PickedWinner,
			PredictedMethod: req.PredictedMethod,
			PredictedRound:  req.PredictedRound,
			Confidence:      req.Confidence,
			OddsAtPick:      req.OddsAtPick,
		})
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "prediction rejected",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(prediction)
	})

	securedGroup.Get("/user/predictions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		list, err := predictions.ListForUser(userID, c.Query("event_id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list predictions",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})
}

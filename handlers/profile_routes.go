// handlers/profile_routes.go
package handlers

import (
	"strconv"

	"arena-score-system/middleware"
	"arena-score-system/models"
	"arena-score-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupProfileRoutes(app *fiber.App, profiles *services.ProfileService, notifier *services.NotificationService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var profile models.UserProfile
		if err := profiles.DB.Where("external_user_id = ?", userID).First(&profile).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "DB error fetching profile",
					"cause": err.Error(),
				})
			}
			// Nothing scored yet — an empty snapshot, not an error
			profile = models.UserProfile{ExternalUserID: userID}
		}

		var achievements []models.UserAchievement
		if err := profiles.DB.Where("external_user_id = ?", userID).
			Order("awarded_at DESC").
			Find(&achievements).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get achievements",
				"cause": err.Error(),
			})
		}

		names := make(map[string]models.AchievementRule, len(models.AchievementRules))
		for _, rule := range models.AchievementRules {
			names[rule.Code] = rule
		}
		var unlocked []fiber.Map
		for _, a := range achievements {
			entry := fiber.Map{
				"code":       a.Code,
				"awarded_at": a.AwardedAt,
			}
			if rule, ok := names[a.Code]; ok {
				entry["name"] = rule.Name
				entry["description"] = rule.Description
				entry["rarity"] = rule.Rarity
			}
			unlocked = append(unlocked, entry)
		}

		return c.JSON(fiber.Map{
			"external_user_id":          profile.ExternalUserID,
			"total_points":              profile.TotalPoints,
			"total_xp":                  profile.TotalXP,
			"total_predictions":         profile.TotalPredictions,
			"correct_predictions":       profile.CorrectPredictions,
			"perfect_predictions":       profile.PerfectPredictions,
			"accuracy_pct":              profile.Accuracy(),
			"current_streak":            profile.CurrentStreak,
			"best_streak":               profile.BestStreak,
			"current_main_event_streak": profile.CurrentMainEventStreak,
			"best_main_event_streak":    profile.BestMainEventStreak,
			"underdog_hits":             profile.UnderdogHits,
			"ko_hits":                   profile.KOHits,
			"submission_hits":           profile.SubmissionHits,
			"decision_hits":             profile.DecisionHits,
			"achievements":              unlocked,
		})
	})

	securedGroup.Get("/user/notifications", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		notifications, err := notifier.ListForUser(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get notifications",
				"cause": err.Error(),
			})
		}
		return c.JSON(notifications)
	})
}

// handlers/achievements.go
package handlers

import (
	"fore-rewards-system/middleware"
	"fore-rewards-system/models"
	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAchievementRoutes(app *fiber.App, achievements *services.AchievementService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		category := models.AchievementCategory(c.Query("category"))
		tier := models.AchievementTier(c.Query("tier"))

		catalog, err := achievements.Catalog(userID, category, tier)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(catalog)
	})

	securedGroup.Get("/achievements/mine", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		grants, err := achievements.MyAchievements(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(grants)
	})

	// Re-evaluates the current user against the full catalog. Lets the
	// frontend offer a "check my achievements" button.
	securedGroup.Post("/achievements/check", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		grants, err := achievements.EvaluateAndGrant(userID, "manual_check")
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"new_achievements": grants,
			"count":            len(grants),
		})
	})

	securedGroup.Get("/achievements/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		stats, err := achievements.Stats(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	})
}

// handlers/leaderboards.go
package handlers

import (
	"strconv"

	"fore-rewards-system/middleware"
	"fore-rewards-system/models"
	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboards *services.LeaderboardService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/leaderboards", func(c *fiber.Ctx) error {
		category := models.LeaderboardCategory(c.Query("category"))
		period := models.LeaderboardPeriod(c.Query("period"))

		boards, err := leaderboards.Boards(category, period)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(boards)
	})

	securedGroup.Get("/leaderboards/:id/rankings", func(c *fiber.Ctx) error {
		boardID := c.Params("id")
		limit, _ := strconv.Atoi(c.Query("limit", "100"))

		var board models.Leaderboard
		if err := leaderboards.DB.Where("id = ?", boardID).First(&board).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "leaderboard not found"})
			}
			return serviceError(c, err)
		}

		rankings, err := leaderboards.Rankings(boardID, limit)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"leaderboard": board,
			"rankings":    rankings,
		})
	})

	securedGroup.Get("/leaderboards/mine", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		rankings, err := leaderboards.MyRankings(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(rankings)
	})

	securedGroup.Post("/leaderboards/rankings/:id/claim", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		rankingID := c.Params("id")

		claimed, err := leaderboards.ClaimReward(rankingID, userID)
		if err != nil {
			return serviceError(c, err)
		}
		if !claimed {
			return c.JSON(fiber.Map{
				"claimed": false,
				"message": "reward already claimed or nothing to claim",
			})
		}
		return c.JSON(fiber.Map{
			"claimed": true,
			"message": "reward credited to your wallet",
		})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/leaderboards/:id/recompute", func(c *fiber.Ctx) error {
		var board models.Leaderboard
		if err := leaderboards.DB.Where("id = ?", c.Params("id")).First(&board).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "leaderboard not found"})
			}
			return serviceError(c, err)
		}
		if err := leaderboards.Recompute(&board); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "leaderboard recomputed", "id": board.ID})
	})

	adminGroup.Post("/leaderboards/recompute", func(c *fiber.Ctx) error {
		updated, err := leaderboards.RecomputeAll()
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "recompute finished", "updated": updated})
	})
}

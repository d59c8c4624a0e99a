// handlers/rewards.go
package handlers

import (
	"strconv"

	"fore-rewards-system/middleware"
	"fore-rewards-system/models"
	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func SetupRewardRoutes(app *fiber.App, redemptions *services.RedemptionService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/rewards", func(c *fiber.Ctx) error {
		query := redemptions.DB.Model(&models.Reward{}).Where("is_active = ?", true)

		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if maxCost := c.Query("max_cost"); maxCost != "" {
			cost, err := decimal.NewFromString(maxCost)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid max_cost"})
			}
			query = query.Where("fore_cost <= ?", cost)
		}

		order := "fore_cost ASC"
		switch c.Query("order") {
		case "cost_desc":
			order = "fore_cost DESC"
		case "popular":
			order = "total_redeemed DESC"
		case "newest":
			order = "created_at DESC"
		}

		var rewards []models.Reward
		if err := query.Order(order).Find(&rewards).Error; err != nil {
			return serviceError(c, err)
		}
		return c.JSON(rewards)
	})

	securedGroup.Post("/rewards/:id/redeem", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var delivery services.DeliveryInfo
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&delivery); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid JSON",
					"cause": err.Error(),
				})
			}
		}

		redemption, err := redemptions.Redeem(userID, c.Params("id"), delivery)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(redemption)
	})

	securedGroup.Get("/rewards/redemptions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		list, total, err := redemptions.MyRedemptions(userID, page, size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"redemptions": list,
			"total":       total,
			"page":        page,
			"size":        size,
		})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	type rewardPayload struct {
		Title            string                `json:"title"`
		Description      string                `json:"description"`
		Category         models.RewardCategory `json:"category"`
		ForeCost         decimal.Decimal       `json:"fore_cost"`
		ImageURL         string                `json:"image_url"`
		IsActive         *bool                 `json:"is_active"`
		StockQuantity    *int64                `json:"stock_quantity"`
		MaxPerUser       *int64                `json:"max_per_user"`
		DeliveryInfo     string                `json:"delivery_info"`
		RequiresShipping bool                  `json:"requires_shipping"`
	}

	adminGroup.Post("/rewards", func(c *fiber.Ctx) error {
		var req rewardPayload
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Title == "" || !req.ForeCost.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "title and a positive fore_cost are required",
			})
		}

		reward := models.Reward{
			ID:               uuid.NewString(),
			Title:            req.Title,
			Slug:             slug.Make(req.Title),
			Description:      req.Description,
			Category:         req.Category,
			ForeCost:         req.ForeCost,
			ImageURL:         req.ImageURL,
			IsActive:         true,
			StockQuantity:    req.StockQuantity,
			MaxPerUser:       req.MaxPerUser,
			DeliveryInfo:     req.DeliveryInfo,
			RequiresShipping: req.RequiresShipping,
		}
		if req.IsActive != nil {
			reward.IsActive = *req.IsActive
		}
		if err := redemptions.DB.Create(&reward).Error; err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})

	adminGroup.Put("/rewards/:id", func(c *fiber.Ctx) error {
		var reward models.Reward
		if err := redemptions.DB.Where("id = ?", c.Params("id")).First(&reward).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "reward not found"})
			}
			return serviceError(c, err)
		}

		var req rewardPayload
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if req.Title != "" {
			reward.Title = req.Title
			reward.Slug = slug.Make(req.Title)
		}
		if req.Description != "" {
			reward.Description = req.Description
		}
		if req.Category != "" {
			reward.Category = req.Category
		}
		if req.ForeCost.IsPositive() {
			reward.ForeCost = req.ForeCost
		}
		if req.ImageURL != "" {
			reward.ImageURL = req.ImageURL
		}
		if req.IsActive != nil {
			reward.IsActive = *req.IsActive
		}
		if req.StockQuantity != nil {
			reward.StockQuantity = req.StockQuantity
		}
		if req.MaxPerUser != nil {
			reward.MaxPerUser = req.MaxPerUser
		}
		if req.DeliveryInfo != "" {
			reward.DeliveryInfo = req.DeliveryInfo
		}
		reward.RequiresShipping = req.RequiresShipping

		if err := redemptions.DB.Save(&reward).Error; err != nil {
			return serviceError(c, err)
		}
		return c.JSON(reward)
	})

	adminGroup.Patch("/rewards/redemptions/:id/status", func(c *fiber.Ctx) error {
		type Req struct {
			Status       models.RedemptionStatus `json:"status"`
			TrackingCode string                  `json:"tracking_code"`
			AdminNotes   string                  `json:"admin_notes"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		updated, err := redemptions.UpdateStatus(c.Params("id"), req.Status, req.TrackingCode, req.AdminNotes)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(updated)
	})

	adminGroup.Post("/catalogs/seed", func(c *fiber.Ctx) error {
		if err := services.SeedInitialData(redemptions.DB); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "catalogs seeded"})
	})

	adminGroup.Get("/rewards/redemptions/code/:code", func(c *fiber.Ctx) error {
		redemption, err := redemptions.LookupByCode(c.Params("code"))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "redemption not found"})
			}
			return serviceError(c, err)
		}
		return c.JSON(redemption)
	})
}

// handlers/wallet.go
package handlers

import (
	"strconv"

	"fore-rewards-system/middleware"
	"fore-rewards-system/models"
	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func SetupWalletRoutes(app *fiber.App, ledger *services.LedgerService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/wallet", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		wallet, err := ledger.GetOrCreateWallet(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"user_id":           wallet.UserID,
			"balance":           wallet.Balance,
			"available_balance": wallet.AvailableBalance(),
			"total_earned":      wallet.TotalEarned,
			"total_spent":       wallet.TotalSpent,
			"frozen_amount":     wallet.FrozenAmount,
		})
	})

	securedGroup.Get("/wallet/transactions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))
		txType := models.TransactionType(c.Query("type"))

		txs, total, err := ledger.Transactions(userID, txType, page, size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"transactions": txs,
			"total":        total,
			"page":         page,
			"size":         size,
		})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/wallet/adjust", func(c *fiber.Ctx) error {
		type Req struct {
			UserID      string          `json:"user_id"`
			Amount      decimal.Decimal `json:"amount"`
			Description string          `json:"description"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.Amount.IsZero() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and a non-zero amount are required",
			})
		}

		adminID := c.Locals("user_id").(string)
		balance, err := ledger.AdminAdjust(req.UserID, req.Amount, req.Description, adminID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":     "adjustment applied",
			"user_id":     req.UserID,
			"amount":      req.Amount,
			"new_balance": balance,
		})
	})

	adminGroup.Get("/wallet/stats", func(c *fiber.Ctx) error {
		stats, err := ledger.Stats()
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	})
}

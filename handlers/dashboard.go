// handlers/dashboard.go
package handlers

import (
	"fore-rewards-system/middleware"
	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App, dashboard *services.DashboardService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/dashboard", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		d, err := dashboard.Build(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(d)
	})
}

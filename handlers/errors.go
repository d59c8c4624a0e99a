// handlers/errors.go
package handlers

import (
	"errors"

	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// serviceError maps service sentinels to HTTP responses. Anything unmapped
// is a 500 with the cause attached, same shape the rest of the API uses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrRewardNotFound),
		errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, services.ErrRankingNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotAvailable),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrPerUserLimitReached),
		errors.Is(err, services.ErrMissingDeliveryInfo):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrConcurrencyConflict):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "please retry",
			"cause": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
			"cause": err.Error(),
		})
	}
}

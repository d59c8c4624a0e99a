// handlers/activity.go
package handlers

import (
	"fore-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Internal hooks called by the progress subsystem (service-to-service, behind
// gateway auth only). Each event carries the token reward configured on the
// content object; this service does not own the course catalog.
func SetupActivityRoutes(app *fiber.App, activity *services.ActivityService) {
	internalGroup := app.Group("/internal")

	internalGroup.Post("/lesson-completed", func(c *fiber.Ctx) error {
		type Req struct {
			UserID   string          `json:"user_id"`
			LessonID string          `json:"lesson_id"`
			CourseID string          `json:"course_id"`
			Title    string          `json:"title"`
			Reward   decimal.Decimal `json:"fore_tokens_reward"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.LessonID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and lesson_id are required",
			})
		}

		result, err := activity.OnLessonCompleted(req.UserID, req.LessonID, req.CourseID, req.Title, req.Reward)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})

	internalGroup.Post("/quiz-passed", func(c *fiber.Ctx) error {
		type Req struct {
			UserID   string          `json:"user_id"`
			QuizID   string          `json:"quiz_id"`
			LessonID string          `json:"lesson_id"`
			CourseID string          `json:"course_id"`
			Title    string          `json:"title"`
			Reward   decimal.Decimal `json:"fore_tokens_reward"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.QuizID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and quiz_id are required",
			})
		}

		result, err := activity.OnQuizPassed(req.UserID, req.QuizID, req.LessonID, req.CourseID, req.Title, req.Reward)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})

	internalGroup.Post("/course-completed", func(c *fiber.Ctx) error {
		type Req struct {
			UserID   string          `json:"user_id"`
			CourseID string          `json:"course_id"`
			Title    string          `json:"title"`
			Reward   decimal.Decimal `json:"fore_tokens_reward"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.CourseID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and course_id are required",
			})
		}

		result, err := activity.OnCourseCompleted(req.UserID, req.CourseID, req.Title, req.Reward)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})

	internalGroup.Post("/daily-login", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string          `json:"user_id"`
			Reward decimal.Decimal `json:"fore_tokens_reward"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id is required",
			})
		}

		result, err := activity.OnDailyLogin(req.UserID, req.Reward)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})
}

package ops

import (
	"pk10/database"
	"pk10/helpers"

	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	sqlDB, err := database.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "DATABASE_UNREACHABLE",
		})
	}
	return helpers.JSONSuccess(c, "ok", nil)
}

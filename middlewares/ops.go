package middlewares

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// OpsAuth guards the operator endpoints with the shared OPS_TOKEN.
func OpsAuth() fiber.Handler {
	expectedToken := os.Getenv("OPS_TOKEN")

	return func(c *fiber.Ctx) error {
		token := c.Get("X-Ops-Token")

		if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_OPS_TOKEN",
			})
		}

		return c.Next()
	}
}

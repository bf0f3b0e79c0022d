package routes

import (
	"pk10/controllers/ops"
	"pk10/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	opsroutes := app.Group("/ops", middlewares.OpsAuth())
	opsroutes.Get("/health", ops.Health)
	opsroutes.Get("/periods/:period_no", ops.GetPeriod)
	opsroutes.Get("/periods/:period_no/settlement", ops.GetSettlement)
	opsroutes.Get("/periods/:period_no/rebates", ops.GetRebates)
	opsroutes.Post("/periods/:period_no/settle", ops.TriggerSettle)
	opsroutes.Post("/periods/:period_no/draw/correct", ops.CorrectDraw)
	opsroutes.Post("/periods/:period_no/void", ops.Void)
	opsroutes.Post("/members/:member_code/adjust", ops.AdjustMemberBalance)
}

package ops

import (
	"errors"

	"pk10/database"
	"pk10/helpers"
	"pk10/models"
	"pk10/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetPeriod returns the period row plus its draw result, if drawn.
func GetPeriod(c *fiber.Ctx) error {
	periodNo := c.Params("period_no")

	var period models.Period
	if err := database.DB.Where("period_no = ?", periodNo).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONError(c, "PERIOD_NOT_FOUND")
		}
		return helpers.JSONError(c, "DB_ERROR")
	}

	data := fiber.Map{"period": period}

	var draw models.DrawResult
	if err := database.DB.Where("period_no = ?", periodNo).First(&draw).Error; err == nil {
		data["draw_result"] = draw
	}

	return helpers.JSONSuccess(c, "Period loaded", data)
}

// GetSettlement returns the SettlementResult for a settled period.
func GetSettlement(c *fiber.Ctx) error {
	periodNo := c.Params("period_no")

	var slog models.SettlementLog
	if err := database.DB.Where("period_no = ?", periodNo).First(&slog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONError(c, "PERIOD_NOT_SETTLED")
		}
		return helpers.JSONError(c, "DB_ERROR")
	}

	return helpers.JSONSuccess(c, "Settlement loaded", services.SettlementResult{
		PeriodNo:       slog.PeriodNo,
		SettledCount:   int64(slog.SettledCount),
		WinCount:       int64(slog.WinCount),
		TotalWinAmount: slog.TotalWinAmount,
		DurationMs:     slog.DurationMs,
	})
}

// GetRebates returns the per-agent rebate summary rebuilt from the ledger.
func GetRebates(c *fiber.Ctx) error {
	periodNo := c.Params("period_no")

	summary, err := services.LoadRebateSummary(periodNo)
	if err != nil {
		return helpers.JSONError(c, "DB_ERROR")
	}
	return helpers.JSONSuccess(c, "Rebates loaded", summary)
}

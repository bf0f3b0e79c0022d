package ops

import (
	"errors"

	"pk10/helpers"
	"pk10/services"

	"github.com/gofiber/fiber/v2"
)

// TriggerSettle re-invokes the settlement protocol for a period. Safe to call
// repeatedly: an already-settled period is a no-op.
func TriggerSettle(c *fiber.Ctx) error {
	periodNo := c.Params("period_no")

	result, err := services.SettlePeriod(periodNo)
	if err != nil {
		if errors.Is(err, services.ErrLockHeld) {
			return helpers.JSONError(c, "SETTLEMENT_IN_PROGRESS")
		}
		if errors.Is(err, services.ErrDrawMissing) {
			return helpers.JSONError(c, "DRAW_RESULT_MISSING")
		}
		return helpers.JSONError(c, "SETTLEMENT_FAILED")
	}

	return helpers.JSONSuccess(c, "Period settled", result)
}

type correctDrawRequest struct {
	Positions []int  `json:"positions"`
	Operator  string `json:"operator"`
	Reason    string `json:"reason"`
}

// CorrectDraw replaces a drawn-but-unsettled period's result, leaving an
// audit record.
func CorrectDraw(c *fiber.Ctx) error {
	periodNo := c.Params("period_no")

	var req correctDrawRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Operator == "" || req.Reason == "" {
		return helpers.JSONError(c, "OPERATOR_AND_REASON_REQUIRED")
	}

	if err := services.CorrectDrawResult(periodNo, req.Positions, req.Operator, req.Reason); err != nil {
		if errors.Is(err, services.ErrDataIntegrity) {
			return helpers.JSONError(c, "INVALID_POSITIONS")
		}
		return helpers.JSONError(c, "CORRECTION_REJECTED")
	}

	return helpers.JSONSuccess(c, "Draw result corrected", nil)
}

// Void refunds all unsettled stakes and retires the period.
func Void(c *fiber.Ctx) error {
	periodNo := c.Params("period_no")

	if err := services.VoidPeriod(periodNo); err != nil {
		if errors.Is(err, services.ErrLockHeld) {
			return helpers.JSONError(c, "SETTLEMENT_IN_PROGRESS")
		}
		return helpers.JSONError(c, "VOID_REJECTED")
	}

	return helpers.JSONSuccess(c, "Period voided", nil)
}

package ops

import (
	"pk10/database"
	"pk10/helpers"
	"pk10/models"
	"pk10/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type adjustRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// AdjustMemberBalance applies a signed manual correction through the ledger,
// so the adjustment carries the same before/after audit trail as settlement
// credits.
func AdjustMemberBalance(c *fiber.Ctx) error {
	memberCode := c.Params("member_code")

	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Amount.IsZero() || req.Note == "" {
		return helpers.JSONError(c, "AMOUNT_AND_NOTE_REQUIRED")
	}

	var record *models.TransactionRecord
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = services.CreditMember(tx, memberCode, models.TrxAdjustment, req.Amount, "", req.Note, uuid.New().String())
		return err
	})
	if err != nil {
		return helpers.JSONError(c, "ADJUSTMENT_FAILED")
	}

	return helpers.JSONSuccess(c, "Balance adjusted", fiber.Map{
		"member_code":    memberCode,
		"amount":         req.Amount,
		"balance_after":  record.BalanceAfter,
		"transaction_id": record.ID,
	})
}

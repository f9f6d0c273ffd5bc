package handler

import (
	"easyticket/helper"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
)

// Gateway is the process-wide payment gateway. Tests swap it for a fake.
var Gateway helper.PaymentGateway = NewStripe()

// respondError maps the helper error taxonomy onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	switch err.(type) {
	case *helper.ValidationError:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "validation failed", err)
	case *helper.ConflictError:
		return utils.ErrorResponse(c, fiber.StatusConflict, "conflict", err)
	case *helper.GatewayError:
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "payment gateway error", err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "internal error", err)
	}
}

// currentBuyer reads the identity the auth middleware stashed on the context.
func currentBuyer(c *fiber.Ctx) (model.Buyer, bool) {
	claim, ok := c.Locals("claim").(*model.TokenClaim)
	if !ok || claim == nil {
		return model.Buyer{}, false
	}
	return model.Buyer{UserID: claim.UserID, Email: claim.Email}, true
}

func currentClaim(c *fiber.Ctx) (*model.TokenClaim, bool) {
	claim, ok := c.Locals("claim").(*model.TokenClaim)
	return claim, ok && claim != nil
}

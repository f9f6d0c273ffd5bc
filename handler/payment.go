package handler

import (
	"time"

	"easyticket/database"
	"easyticket/helper"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreatePaymentIntent opens a gateway intent for a pending order and moves
// it to processing. Re-calling for an order already in processing returns
// the stored intent id so the client can resume checkout.
func CreatePaymentIntent(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid order id", err)
	}

	var order model.Order
	if err := database.DB.Where("id = ? AND user_id = ?", id, buyer.UserID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "order not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load order", err)
	}

	if order.Status == model.OrderProcessing && order.PaymentID != "" {
		intent, err := Gateway.RetrieveIntent(order.PaymentID)
		if err != nil {
			return respondError(c, &helper.GatewayError{Op: "retrieve intent", Err: err})
		}
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
			"intentId":     intent.ID,
			"clientSecret": intent.ClientSecret,
		})
	}
	if order.Status != model.OrderPending {
		return respondError(c, helper.Conflictf("order %s is %s, payment cannot start", order.OrderNumber, order.Status))
	}
	if order.IsExpired(time.Now()) {
		return respondError(c, helper.Validationf("order %s has expired", order.OrderNumber))
	}

	// The gateway call stays outside the transaction; on failure the order
	// remains pending and the client may retry.
	intent, err := Gateway.CreateIntent(&order)
	if err != nil {
		return respondError(c, &helper.GatewayError{Op: "create intent", Err: err})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(map[string]any{
			"payment_id":     intent.ID,
			"payment_method": "stripe",
		}).Error; err != nil {
			return err
		}
		order.PaymentID = intent.ID
		order.PaymentMethod = "stripe"
		return helper.Transition(tx, Gateway, &order, model.OrderProcessing, "")
	})
	if txErr != nil {
		return respondError(c, txErr)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"intentId":     intent.ID,
		"clientSecret": intent.ClientSecret,
	})
}

// GetPaymentStatus polls the gateway for an order stuck in processing, for
// clients reconciling after a missed webhook.
func GetPaymentStatus(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid order id", err)
	}

	var order model.Order
	if err := database.DB.Where("id = ? AND user_id = ?", id, buyer.UserID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "order not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load order", err)
	}

	gatewayStatus := ""
	if order.PaymentID != "" {
		intent, err := Gateway.RetrieveIntent(order.PaymentID)
		if err != nil {
			return respondError(c, &helper.GatewayError{Op: "retrieve intent", Err: err})
		}
		gatewayStatus = intent.Status
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"orderStatus":   order.Status,
		"gatewayStatus": gatewayStatus,
	})
}

// CleanupExpiredOrders triggers the expiry sweep on demand.
func CleanupExpiredOrders(c *fiber.Ctx) error {
	claim, ok := currentClaim(c)
	if !ok || claim.UserType != "organizer" {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "organizer access required", nil)
	}
	n, err := helper.SweepExpiredOrders(database.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "sweep failed", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"expired": n})
}

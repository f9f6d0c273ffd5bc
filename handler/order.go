package handler

import (
	"context"
	"time"

	"easyticket/database"
	"easyticket/helper"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// OrderSummary is the list-view projection of an order.
type OrderSummary struct {
	ID          uint       `json:"id"`
	OrderNumber string     `json:"orderNumber"`
	Status      string     `json:"status"`
	TotalAmount string     `json:"totalAmount"`
	Currency    string     `json:"currency"`
	EventID     uint       `json:"eventId"`
	EventTitle  string     `json:"eventTitle"`
	TicketCount uint       `json:"ticketCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// CreateOrder builds a pending reservation from the validated request body.
func CreateOrder(c *fiber.Ctx) error {
	input, ok := c.Locals("input").(*model.CreateOrderInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}

	order, err := helper.BuildOrder(database.DB, buyer, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, order)
}

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}

	q := database.DB.
		Preload("Event").
		Preload("Items").
		Where("user_id = ?", buyer.UserID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	page := model.Pagination{
		Limit: utils.Ptr(c.QueryInt("limit", 20)),
		Page:  utils.Ptr(c.QueryInt("page", 1)),
	}
	q = q.Limit(*page.Limit).Offset((*page.Page - 1) * *page.Limit)

	var orders []model.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load orders", err)
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		var s OrderSummary
		if err := copier.Copy(&s, &orders[i]); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not map orders", err)
		}
		s.TotalAmount = orders[i].TotalAmount.StringFixed(2)
		s.EventTitle = orders[i].Event.Title
		s.TicketCount = orders[i].TotalTickets()
		summaries = append(summaries, s)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summaries)
}

// GetOrderDetail returns one of the caller's orders with items and tickets.
func GetOrderDetail(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid order id", err)
	}

	var order model.Order
	if err := database.DB.
		Preload("Event").
		Preload("Items").
		Preload("Tickets").
		Where("id = ? AND user_id = ?", id, buyer.UserID).
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "order not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load order", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// CancelOrder lets the buyer abandon an unpaid order. Confirmed orders must
// go through RefundOrder instead.
func CancelOrder(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid order id", err)
	}
	reason := "cancelled by buyer"
	if input, ok := c.Locals("input").(*model.CancelOrderInput); ok && input.Reason != "" {
		reason = input.Reason
	}

	var order model.Order
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, buyer.UserID).First(&order).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return helper.Validationf("order not found")
			}
			return err
		}
		if order.Status != model.OrderPending && order.Status != model.OrderProcessing {
			return helper.Conflictf("order %s is %s and can no longer be cancelled", order.OrderNumber, order.Status)
		}
		return helper.Transition(tx, Gateway, &order, model.OrderCancelled, reason)
	})
	if txErr != nil {
		return respondError(c, txErr)
	}

	utils.SendOrderCancellationEmail(order.BuyerEmail, utils.OrderCancellationData{
		OrderNumber: order.OrderNumber,
		BuyerName:   order.BuyerName,
		Reason:      reason,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
	})
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// RefundOrder reverses a confirmed order: gateway refund, inventory credit,
// ticket cancellation.
func RefundOrder(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid order id", err)
	}
	reason := "refund requested by buyer"
	if input, ok := c.Locals("input").(*model.CancelOrderInput); ok && input.Reason != "" {
		reason = input.Reason
	}

	var order model.Order
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, buyer.UserID).First(&order).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return helper.Validationf("order not found")
			}
			return err
		}
		return helper.Transition(tx, Gateway, &order, model.OrderRefunded, reason)
	})
	if txErr != nil {
		return respondError(c, txErr)
	}

	utils.SendOrderCancellationEmail(order.BuyerEmail, utils.OrderCancellationData{
		OrderNumber: order.OrderNumber,
		BuyerName:   order.BuyerName,
		Reason:      reason,
		Refunded:    true,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
	})
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// DeleteOrder is the administrative removal path. Deleting a confirmed order
// credits inventory back exactly like a refund before the rows go away.
func DeleteOrder(c *fiber.Ctx) error {
	claim, ok := currentClaim(c)
	if !ok || claim.UserType != "organizer" {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "organizer access required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid order id", err)
	}

	var eventID uint
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return helper.Validationf("order not found")
			}
			return err
		}
		eventID = order.EventID
		if order.Status == model.OrderConfirmed {
			if err := helper.CreditOrderItems(tx, &order); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.Ticket{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if txErr != nil {
		return respondError(c, txErr)
	}
	utils.CacheInvalidate(context.Background(), utils.CatalogKey(eventID))
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": id})
}

// GetOrderStats aggregates order counts and revenue per status for an event.
func GetOrderStats(c *fiber.Ctx) error {
	claim, ok := currentClaim(c)
	if !ok || claim.UserType != "organizer" {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "organizer access required", nil)
	}
	eventID, err := c.ParamsInt("eventId")
	if err != nil || eventID <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid event id", err)
	}

	type row struct {
		Status  string `json:"status"`
		Count   int64  `json:"count"`
		Revenue string `json:"revenue"`
	}
	var rows []row
	if err := database.DB.Model(&model.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load stats", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rows)
}

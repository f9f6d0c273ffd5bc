package handler

import (
	"easyticket/database"
	"easyticket/helper"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMyTickets lists the caller's tickets across all orders, newest first.
func GetMyTickets(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}

	var tickets []model.Ticket
	if err := database.DB.
		Preload("Event").
		Joins("JOIN orders ON orders.id = tickets.order_id").
		Where("orders.user_id = ?", buyer.UserID).
		Order("tickets.created_at desc").
		Find(&tickets).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load tickets", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, tickets)
}

// GetTicketQR renders a ticket's redemption code as a PNG, for wallets that
// do not render the inline email image.
func GetTicketQR(c *fiber.Ctx) error {
	buyer, ok := currentBuyer(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "login required", nil)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid ticket id", err)
	}

	var ticket model.Ticket
	if err := database.DB.
		Joins("JOIN orders ON orders.id = tickets.order_id").
		Where("tickets.id = ? AND orders.user_id = ?", id, buyer.UserID).
		First(&ticket).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "ticket not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load ticket", err)
	}

	png, err := utils.GenerateQRCode(ticket.QRCodeData, 512)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not render QR", err)
	}
	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

// VerifyTicket redeems a scanned code at the gate. Staff only.
func VerifyTicket(c *fiber.Ctx) error {
	claim, ok := currentClaim(c)
	if !ok || (claim.UserType != "staff" && claim.UserType != "organizer") {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "staff access required", nil)
	}
	input, ok := c.Locals("input").(*model.VerifyTicketInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	ticket, err := helper.MarkTicketUsed(database.DB, input.QRCodeData, claim.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"ticketNumber": ticket.TicketNumber,
		"name":         ticket.FullTicketName(),
		"usedAt":       ticket.UsedAt,
	})
}

// GetEventTicketStats reports issued/used/cancelled counts for an event.
func GetEventTicketStats(c *fiber.Ctx) error {
	claim, ok := currentClaim(c)
	if !ok || (claim.UserType != "staff" && claim.UserType != "organizer") {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "staff access required", nil)
	}
	eventID, err := c.ParamsInt("eventId")
	if err != nil || eventID <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid event id", err)
	}

	type row struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var rows []row
	if err := database.DB.Model(&model.Ticket{}).
		Select("status, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load stats", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rows)
}

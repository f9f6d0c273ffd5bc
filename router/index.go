package router

import (
	"easyticket/handler"
	"easyticket/middleware"
	"easyticket/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, stripe *handler.Stripe) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")

	events := v1.Group("/events")
	events.Get("/:eventId/ticket-types", middleware.OptionalJWT(), handler.GetEventTicketTypes)
	events.Get("/:eventId/orders/stats", middleware.Protected(), handler.GetOrderStats)
	events.Get("/:eventId/tickets/stats", middleware.Protected(), handler.GetEventTicketStats)

	ticketTypes := v1.Group("/ticket-types")
	ticketTypes.Get("/:id/matrix", middleware.OptionalJWT(), handler.GetTicketTypeMatrix)

	orders := v1.Group("/orders", middleware.Protected())
	orders.Post("/", validate.CreateOrder(), handler.CreateOrder)
	orders.Get("/", handler.GetMyOrders)
	orders.Get("/:id", handler.GetOrderDetail)
	orders.Post("/:id/cancel", validate.CancelOrder(), handler.CancelOrder)
	orders.Post("/:id/refund", validate.CancelOrder(), handler.RefundOrder)
	orders.Delete("/:id", handler.DeleteOrder)
	orders.Post("/:id/payment-intent", handler.CreatePaymentIntent)
	orders.Get("/:id/payment-status", handler.GetPaymentStatus)

	tickets := v1.Group("/tickets", middleware.Protected())
	tickets.Get("/", handler.GetMyTickets)
	tickets.Get("/:id/qr", handler.GetTicketQR)
	tickets.Post("/verify", validate.VerifyTicket(), handler.VerifyTicket)

	admin := v1.Group("/admin", middleware.Protected())
	admin.Post("/orders/cleanup-expired", handler.CleanupExpiredOrders)

	// Gateway ingress, signature-authenticated, no JWT.
	v1.Post("/webhooks/stripe", handler.StripeWebhook(stripe))
}

package helper

import (
	"time"

	"easyticket/model"
	"easyticket/monitoring"

	"gorm.io/gorm"
)

// PaymentGateway is the slice of the payment provider the order lifecycle
// needs. The production implementation lives in handler/stripe.go; tests
// substitute a fake.
type PaymentGateway interface {
	CreateIntent(order *model.Order) (*model.PaymentIntent, error)
	RetrieveIntent(intentID string) (*model.PaymentIntent, error)
	CreateRefund(intentID string, amount int64) (*model.Refund, error)
}

// transitions is the full set of legal order status edges. Anything not
// listed here is a conflict.
var transitions = map[string][]string{
	model.OrderPending:    {model.OrderProcessing, model.OrderCancelled, model.OrderFailed},
	model.OrderProcessing: {model.OrderConfirmed, model.OrderFailed, model.OrderCancelled},
	model.OrderConfirmed:  {model.OrderRefunded},
}

func canTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AmountCents converts the order total to the gateway's minor unit.
func AmountCents(order *model.Order) int64 {
	return order.TotalAmount.Mul(decimalHundred).IntPart()
}

// Transition moves an order to the target status inside the caller's
// transaction, applying the side effects that belong to the edge: inventory
// debit plus ticket creation on confirm, inventory credit plus ticket
// cancellation on refund of a confirmed order.
//
// Re-confirming an already confirmed order is a no-op, which is what makes
// webhook replays with fresh event ids safe.
func Transition(tx *gorm.DB, gw PaymentGateway, order *model.Order, target, reason string) error {
	if order.Status == model.OrderConfirmed && target == model.OrderConfirmed {
		return nil
	}
	if !canTransition(order.Status, target) {
		return Conflictf("order %s cannot go from %s to %s", order.OrderNumber, order.Status, target)
	}

	now := time.Now()
	switch target {
	case model.OrderConfirmed:
		return confirm(tx, gw, order, now)

	case model.OrderRefunded:
		// The gateway refund is sequenced strictly before the local state
		// change; if it fails the whole transaction aborts and the order
		// stays confirmed.
		if err := loadItems(tx, order); err != nil {
			return err
		}
		if _, err := gw.CreateRefund(order.PaymentID, AmountCents(order)); err != nil {
			return &GatewayError{Op: "refund", Err: err}
		}
		if err := CreditOrderItems(tx, order); err != nil {
			return err
		}
		if err := cancelActiveTickets(tx, order.ID); err != nil {
			return err
		}
		monitoring.OrdersRefunded.Inc()
		return setStatus(tx, order, target, reason, &now)

	case model.OrderCancelled, model.OrderFailed:
		// Only reachable before confirmation, so there is nothing to credit.
		return setStatus(tx, order, target, reason, &now)

	case model.OrderProcessing:
		return setStatus(tx, order, target, "", nil)

	default:
		return Conflictf("unknown order status %q", target)
	}
}

func confirm(tx *gorm.DB, gw PaymentGateway, order *model.Order, now time.Time) error {
	if err := loadItems(tx, order); err != nil {
		return err
	}

	// Money arrived for a reservation that already lapsed: force a
	// compensating refund, never grant tickets without re-validation.
	if order.IsExpired(now) {
		return compensate(tx, gw, order, "order expired before payment completed", now)
	}

	if err := DebitOrderItems(tx, order); err != nil {
		if _, ok := err.(*ValidationError); ok {
			// Capacity ran out between reservation and payment.
			monitoring.OversellRejections.Inc()
			return compensate(tx, gw, order, err.Error(), now)
		}
		return err
	}

	tickets, err := CreateTicketsForOrder(tx, order)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"status":     model.OrderConfirmed,
		"paid_at":    now,
		"expires_at": nil,
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return err
	}
	order.Status = model.OrderConfirmed
	order.PaidAt = &now
	order.ExpiresAt = nil
	order.Tickets = tickets

	monitoring.OrdersConfirmed.Inc()
	monitoring.TicketsIssued.Add(float64(len(tickets)))
	return nil
}

// compensate refunds the captured payment and lands the order in refunded
// without issuing tickets or touching inventory.
func compensate(tx *gorm.DB, gw PaymentGateway, order *model.Order, reason string, now time.Time) error {
	if _, err := gw.CreateRefund(order.PaymentID, AmountCents(order)); err != nil {
		return &GatewayError{Op: "refund", Err: err}
	}
	monitoring.OrdersRefunded.Inc()
	return setStatus(tx, order, model.OrderRefunded, reason, &now)
}

func setStatus(tx *gorm.DB, order *model.Order, status, reason string, cancelledAt *time.Time) error {
	updates := map[string]any{"status": status}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}
	if cancelledAt != nil && status != model.OrderProcessing {
		updates["cancelled_at"] = *cancelledAt
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return err
	}
	order.Status = status
	if reason != "" {
		order.CancellationReason = reason
	}
	if cancelledAt != nil && status != model.OrderProcessing {
		order.CancelledAt = cancelledAt
	}
	return nil
}

func cancelActiveTickets(tx *gorm.DB, orderID uint) error {
	return tx.Model(&model.Ticket{}).
		Where("order_id = ? AND status = ?", orderID, model.TicketActive).
		Update("status", model.TicketCancelled).Error
}

func loadItems(tx *gorm.DB, order *model.Order) error {
	if len(order.Items) > 0 {
		return nil
	}
	return tx.Where("order_id = ?", order.ID).Find(&order.Items).Error
}

package helper

import (
	"log"
	"strconv"
	"time"

	"easyticket/model"
	"easyticket/monitoring"
	"easyticket/utils"

	"gorm.io/gorm"
)

// ProcessWebhookEvent applies one verified gateway event exactly once.
//
// The event id is claimed by inserting the WebhookEvent row before any side
// effect; the unique index makes the losing side of a concurrent duplicate
// delivery fail at insert time, which is reported as a ConflictError the
// ingress treats as success. If dispatch fails the transaction rolls back,
// releasing the claim so the gateway's retry can reapply cleanly.
func ProcessWebhookEvent(db *gorm.DB, gw PaymentGateway, envelope *model.WebhookEnvelope, rawPayload []byte) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		claim := model.WebhookEvent{
			EventID:   envelope.ID,
			EventType: envelope.Type,
			Payload:   string(rawPayload),
		}
		if err := tx.Create(&claim).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return Conflictf("event %s already processed", envelope.ID)
			}
			return err
		}
		return dispatch(tx, gw, envelope)
	})

	outcome := "ok"
	if err != nil {
		if _, ok := err.(*ConflictError); ok {
			outcome = "duplicate"
		} else {
			outcome = "error"
		}
	}
	monitoring.WebhookEvents.WithLabelValues(envelope.Type, outcome).Inc()
	return err
}

func dispatch(tx *gorm.DB, gw PaymentGateway, envelope *model.WebhookEnvelope) error {
	switch envelope.Type {
	case "payment_intent.succeeded":
		order, err := orderForEvent(tx, envelope, envelope.Data.Object.ID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderPending {
			// Intent-created transition was missed; catch up first.
			if err := Transition(tx, gw, order, model.OrderProcessing, ""); err != nil {
				return err
			}
		}
		return Transition(tx, gw, order, model.OrderConfirmed, "")

	case "payment_intent.payment_failed":
		order, err := orderForEvent(tx, envelope, envelope.Data.Object.ID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderConfirmed {
			return Conflictf("order %s already confirmed, ignoring late failure event", order.OrderNumber)
		}
		return Transition(tx, gw, order, model.OrderFailed, "payment failed at gateway")

	case "payment_intent.canceled":
		order, err := orderForEvent(tx, envelope, envelope.Data.Object.ID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderConfirmed {
			return Conflictf("order %s already confirmed, ignoring cancellation event", order.OrderNumber)
		}
		return Transition(tx, gw, order, model.OrderCancelled, "payment cancelled at gateway")

	case "charge.refunded":
		intentID := envelope.Data.Object.PaymentIntent
		order, err := orderForEvent(tx, envelope, intentID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderConfirmed {
			// Compensating refunds already landed the order in refunded;
			// nothing left to reverse.
			return nil
		}
		// The money already moved; only the local side effects run here.
		if err := loadItems(tx, order); err != nil {
			return err
		}
		if err := CreditOrderItems(tx, order); err != nil {
			return err
		}
		if err := cancelActiveTickets(tx, order.ID); err != nil {
			return err
		}
		monitoring.OrdersRefunded.Inc()
		return setStatus(tx, order, model.OrderRefunded, "refunded at gateway", utils.Ptr(time.Now()))

	default:
		// Unknown event types are acknowledged and ignored.
		log.Printf("webhook: ignoring event type %s", envelope.Type)
		return nil
	}
}

// orderForEvent resolves the order an event refers to, preferring the order
// id carried in the intent metadata and falling back to the stored intent id.
func orderForEvent(tx *gorm.DB, envelope *model.WebhookEnvelope, intentID string) (*model.Order, error) {
	var order model.Order
	if raw, ok := envelope.Data.Object.Metadata["order_id"]; ok && raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			if err := tx.First(&order, uint(id)).Error; err == nil {
				return &order, nil
			}
		}
	}
	if intentID == "" {
		return nil, Validationf("event %s carries no order reference", envelope.ID)
	}
	if err := tx.Where("payment_id = ?", intentID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Validationf("no order for payment intent %s", intentID)
		}
		return nil, err
	}
	return &order, nil
}

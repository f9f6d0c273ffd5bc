package helper

import (
	"fmt"
	"testing"

	"easyticket/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func succeededEnvelope(eventID string, orderID uint, intentID string) *model.WebhookEnvelope {
	env := &model.WebhookEnvelope{ID: eventID, Type: "payment_intent.succeeded"}
	env.Data.Object.ID = intentID
	env.Data.Object.Status = "succeeded"
	env.Data.Object.Metadata = map[string]string{"order_id": fmt.Sprint(orderID)}
	return env
}

func TestWebhookConfirmsOrder(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 100, 10)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 2}})
	env := succeededEnvelope("evt_1", order.ID, order.PaymentID)

	require.NoError(t, ProcessWebhookEvent(db, gw, env, []byte(`{}`)))

	var reloaded model.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, model.OrderConfirmed, reloaded.Status)

	var count int64
	require.NoError(t, db.Model(&model.Ticket{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestWebhookDuplicateEventIsConflict(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 100, 10)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}})
	env := succeededEnvelope("evt_dup", order.ID, order.PaymentID)

	require.NoError(t, ProcessWebhookEvent(db, gw, env, []byte(`{}`)))

	err := ProcessWebhookEvent(db, gw, env, []byte(`{}`))
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)

	var reloaded model.TicketType
	require.NoError(t, db.First(&reloaded, tt.ID).Error)
	assert.Equal(t, uint(1), reloaded.QuantitySold, "no second debit")
}

func TestWebhookFreshEventIDReplayIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 100, 10)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}})

	// Two distinct event ids both announcing payment for the same order.
	require.NoError(t, ProcessWebhookEvent(db, gw, succeededEnvelope("evt_a", order.ID, order.PaymentID), []byte(`{}`)))
	require.NoError(t, ProcessWebhookEvent(db, gw, succeededEnvelope("evt_b", order.ID, order.PaymentID), []byte(`{}`)))

	var count int64
	require.NoError(t, db.Model(&model.Ticket{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "already-confirmed guard prevents double materialization")
}

func TestWebhookUnknownTypeAcknowledged(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}

	env := &model.WebhookEnvelope{ID: "evt_unknown", Type: "customer.created"}
	require.NoError(t, ProcessWebhookEvent(db, gw, env, []byte(`{}`)))

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "claim recorded even for ignored types")
}

func TestWebhookFailureReleasesClaim(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}

	// No order matches, so dispatch fails and the claim must roll back.
	env := succeededEnvelope("evt_orphan", 424242, "pi_missing")
	err := ProcessWebhookEvent(db, gw, env, []byte(`{}`))
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	assert.Zero(t, count, "rolled-back claim lets the gateway retry")
}

func TestWebhookPaymentFailed(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 100, 10)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}})
	env := &model.WebhookEnvelope{ID: "evt_fail", Type: "payment_intent.payment_failed"}
	env.Data.Object.ID = order.PaymentID
	env.Data.Object.Metadata = map[string]string{"order_id": fmt.Sprint(order.ID)}

	require.NoError(t, ProcessWebhookEvent(db, gw, env, []byte(`{}`)))

	var reloaded model.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, model.OrderFailed, reloaded.Status)
}

func TestWebhookChargeRefunded(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 100, 10)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 2}})
	require.NoError(t, confirmOrder(t, db, gw, order))

	env := &model.WebhookEnvelope{ID: "evt_refund", Type: "charge.refunded"}
	env.Data.Object.ID = "ch_1"
	env.Data.Object.PaymentIntent = order.PaymentID

	require.NoError(t, ProcessWebhookEvent(db, gw, env, []byte(`{}`)))

	var reloaded model.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, model.OrderRefunded, reloaded.Status)

	var reloadedType model.TicketType
	require.NoError(t, db.First(&reloadedType, tt.ID).Error)
	assert.Equal(t, uint(0), reloadedType.QuantitySold)

	// The money already moved at the gateway; no second refund call.
	assert.EqualValues(t, 0, gw.refunds.Load())
}

func TestWebhookExpiredOrderGuard(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 100, 10)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}})
	require.NoError(t, db.Model(order).Update("expires_at", timeInPast()).Error)

	env := succeededEnvelope("evt_late", order.ID, order.PaymentID)
	require.NoError(t, ProcessWebhookEvent(db, gw, env, []byte(`{}`)))

	var reloaded model.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, model.OrderRefunded, reloaded.Status)
	assert.EqualValues(t, 1, gw.refunds.Load())
}

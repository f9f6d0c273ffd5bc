package helper

import (
	"testing"
	"time"

	"easyticket/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderTotals(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 120, 50)

	order, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items:   []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "240", order.Subtotal.String())
	assert.Equal(t, "12", order.ServiceFee.String())
	assert.Equal(t, "252", order.TotalAmount.String())
	assert.Equal(t, "USD", order.Currency)
	require.NotNil(t, order.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *order.ExpiresAt, time.Minute)
	assert.NotEmpty(t, order.OrderNumber)

	// Reservation holds nothing.
	var reloaded model.TicketType
	require.NoError(t, db.First(&reloaded, tt.ID).Error)
	assert.Equal(t, uint(0), reloaded.QuantitySold)
}

func TestBuildOrderSnapshotsNames(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	tt, tier, day, _ := seedMatrixType(t, db, event.ID, 150, 10)

	order, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items: []model.OrderLineInput{{
			TicketTypeID: tt.ID, TicketTierID: &tier.ID, DayPassID: &day.ID, Quantity: 1,
		}},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "Festival Pass", item.TicketName)
	assert.Equal(t, "VIP", item.TierName)
	assert.Equal(t, "Day 1", item.DayName)
	assert.Equal(t, "Festival Pass - VIP - Day 1", item.FullTicketName())
}

func TestBuildOrderPriceFrozen(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	_, tier := seedTieredType(t, db, event.ID)

	order, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items:   []model.OrderLineInput{{TicketTypeID: tier.TicketTypeID, TicketTierID: &tier.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// A later price change never touches the stored line.
	require.NoError(t, db.Model(&model.TicketTier{}).Where("id = ?", tier.ID).Update("price", 999).Error)

	var item model.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.Equal(t, "80", item.UnitPrice.String())
}

func TestBuildOrderUnpublishedEvent(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 50, 10)
	require.NoError(t, db.Model(event).Update("status", model.EventDraft).Error)

	_, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items:   []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}},
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestBuildOrderBuyerContactOverride(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 50, 10)

	order, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID:    event.ID,
		Items:      []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}},
		BuyerEmail: "gift@example.com",
		BuyerName:  "Gift Recipient",
	})
	require.NoError(t, err)
	assert.Equal(t, "gift@example.com", order.BuyerEmail)
	assert.Equal(t, "Gift Recipient", order.BuyerName)
}

func TestBuildOrderRollsBackOnBadLine(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 50, 10)

	_, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items: []model.OrderLineInput{
			{TicketTypeID: tt.ID, Quantity: 1},
			{TicketTypeID: 9999, Quantity: 1},
		},
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no partial order persisted")
}

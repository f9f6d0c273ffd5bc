package helper

import (
	"testing"
	"time"

	"easyticket/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func issueTickets(t *testing.T, db *gorm.DB) (*model.Order, []model.Ticket) {
	t.Helper()
	gw := &fakeGateway{}
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 75, 20)

	order := makeProcessingOrder(t, db, gw, event.ID, []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 2}})
	require.NoError(t, confirmOrder(t, db, gw, order))

	var tickets []model.Ticket
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&tickets).Error)
	return order, tickets
}

func TestTicketSnapshots(t *testing.T) {
	db := setupTestDB(t)
	_, tickets := issueTickets(t, db)

	require.Len(t, tickets, 2)
	seen := map[string]bool{}
	for _, tk := range tickets {
		assert.Equal(t, "General Admission", tk.TicketName)
		assert.Equal(t, "75", tk.Price.String())
		assert.False(t, tk.EventDate.IsZero())
		assert.Contains(t, tk.TicketNumber, "TKT-")
		assert.Len(t, tk.QRCodeData, 64)
		assert.False(t, seen[tk.QRCodeData], "codes are unique")
		seen[tk.QRCodeData] = true
	}
}

func TestTicketPriceFrozenAfterCatalogEdit(t *testing.T) {
	db := setupTestDB(t)
	_, tickets := issueTickets(t, db)

	require.NoError(t, db.Model(&model.TicketType{}).Where("id = ?", tickets[0].TicketTypeID).Update("price", 999).Error)

	var reloaded model.Ticket
	require.NoError(t, db.First(&reloaded, tickets[0].ID).Error)
	assert.Equal(t, "75", reloaded.Price.String())
}

func TestMarkTicketUsed(t *testing.T) {
	db := setupTestDB(t)
	_, tickets := issueTickets(t, db)

	used, err := MarkTicketUsed(db, tickets[0].QRCodeData, 42)
	require.NoError(t, err)
	assert.Equal(t, model.TicketUsed, used.Status)
	assert.True(t, used.IsUsed)
	require.NotNil(t, used.UsedAt)
	require.NotNil(t, used.ScannedBy)
	assert.Equal(t, uint(42), *used.ScannedBy)

	// One-way: a second scan is a conflict.
	_, err = MarkTicketUsed(db, tickets[0].QRCodeData, 42)
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
}

func TestMarkTicketUsedUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	issueTickets(t, db)

	_, err := MarkTicketUsed(db, "not-a-real-code", 42)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestMarkTicketUsedAfterEventEnded(t *testing.T) {
	db := setupTestDB(t)
	order, tickets := issueTickets(t, db)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&model.Event{}).Where("id = ?", order.EventID).
		Updates(map[string]any{"start_date": past.Add(-time.Hour), "end_date": past}).Error)

	_, err := MarkTicketUsed(db, tickets[0].QRCodeData, 42)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "ended")
}

func TestMarkTicketUsedCancelledTicket(t *testing.T) {
	db := setupTestDB(t)
	_, tickets := issueTickets(t, db)

	require.NoError(t, db.Model(&model.Ticket{}).Where("id = ?", tickets[0].ID).
		Update("status", model.TicketCancelled).Error)

	_, err := MarkTicketUsed(db, tickets[0].QRCodeData, 42)
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
}

func TestSweepExpiredOrders(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	tt := seedSimpleType(t, db, event.ID, 50, 10)

	expired, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items:   []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(expired).Update("expires_at", timeInPast()).Error)

	fresh, err := BuildOrder(db, testBuyer(), &model.CreateOrderInput{
		EventID: event.ID,
		Items:   []model.OrderLineInput{{TicketTypeID: tt.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	n, err := SweepExpiredOrders(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var reloadedExpired, reloadedFresh model.Order
	require.NoError(t, db.First(&reloadedExpired, expired.ID).Error)
	require.NoError(t, db.First(&reloadedFresh, fresh.ID).Error)
	assert.Equal(t, model.OrderFailed, reloadedExpired.Status)
	assert.Equal(t, "order expired - payment not completed in time", reloadedExpired.CancellationReason)
	assert.Equal(t, model.OrderPending, reloadedFresh.Status)
}

func TestServiceFeeRounding(t *testing.T) {
	// 5% of 10.10 is 0.505, rounded half up to 0.51.
	fee := ServiceFee(decimalFromString(t, "10.10"))
	assert.Equal(t, "0.51", fee.StringFixed(2))

	total := OrderTotal(decimalFromString(t, "10.10"), fee, decimalFromString(t, "20"))
	assert.True(t, total.IsZero(), "total floors at zero")
}

package helper

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"easyticket/database"
	"easyticket/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a per-test in-memory database. A single connection
// serializes concurrent access the way postgres row locks would.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedEvent(t *testing.T, db *gorm.DB) *model.Event {
	t.Helper()
	now := time.Now()
	event := &model.Event{
		Title:     "Test Festival",
		Slug:      fmt.Sprintf("test-festival-%s", t.Name()),
		StartDate: now.Add(48 * time.Hour),
		EndDate:   now.Add(72 * time.Hour),
		Status:    model.EventPublished,
		Currency:  "USD",
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedSimpleType(t *testing.T, db *gorm.DB, eventID uint, price int64, quantity uint) *model.TicketType {
	t.Helper()
	tt := &model.TicketType{
		EventID:       eventID,
		Name:          "General Admission",
		PricingType:   model.PricingSimple,
		Price:         decimal.NewFromInt(price),
		TotalQuantity: quantity,
		MinPurchase:   1,
		MaxPurchase:   10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(tt).Error)
	return tt
}

func seedTieredType(t *testing.T, db *gorm.DB, eventID uint) (*model.TicketType, *model.TicketTier) {
	t.Helper()
	tt := &model.TicketType{
		EventID:       eventID,
		Name:          "Concert Ticket",
		PricingType:   model.PricingTiered,
		TotalQuantity: 100,
		MinPurchase:   1,
		MaxPurchase:   10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(tt).Error)
	tier := &model.TicketTier{
		TicketTypeID: tt.ID,
		TierNumber:   1,
		Name:         "Early Bird",
		Price:        decimal.NewFromInt(80),
		Quantity:     20,
	}
	require.NoError(t, db.Create(tier).Error)
	return tt, tier
}

// seedMatrixType builds a tier_and_day type with one tier, one day, and one
// matrix cell of the given price and capacity.
func seedMatrixType(t *testing.T, db *gorm.DB, eventID uint, cellPrice int64, cellQty uint) (*model.TicketType, *model.TicketTier, *model.DayPass, *model.DayTierPrice) {
	t.Helper()
	tt := &model.TicketType{
		EventID:       eventID,
		Name:          "Festival Pass",
		PricingType:   model.PricingTierAndDay,
		TotalQuantity: 1000,
		MinPurchase:   1,
		MaxPurchase:   10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(tt).Error)

	tier := &model.TicketTier{
		TicketTypeID: tt.ID,
		TierNumber:   1,
		Name:         "VIP",
		Price:        decimal.NewFromInt(999),
		Quantity:     100,
	}
	require.NoError(t, db.Create(tier).Error)

	dayNumber := uint(1)
	day := &model.DayPass{
		TicketTypeID: tt.ID,
		DayNumber:    &dayNumber,
		Name:         "Day 1",
		Price:        decimal.NewFromInt(888),
		Quantity:     100,
	}
	require.NoError(t, db.Create(day).Error)

	cell := &model.DayTierPrice{
		TicketTypeID: tt.ID,
		DayNumber:    1,
		DayName:      "Day 1",
		TierNumber:   1,
		TierName:     "VIP",
		Price:        decimal.NewFromInt(cellPrice),
		Quantity:     cellQty,
		IsActive:     true,
	}
	require.NoError(t, db.Create(cell).Error)
	return tt, tier, day, cell
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func timeInPast() time.Time {
	return time.Now().Add(-time.Minute)
}

func testBuyer() model.Buyer {
	return model.Buyer{UserID: 7, Email: "buyer@example.com", Name: "Test Buyer"}
}

// fakeGateway stands in for the payment provider. It records refund calls
// and can be told to fail them.
type fakeGateway struct {
	intents     atomic.Int64
	refunds     atomic.Int64
	failRefunds bool
}

func (g *fakeGateway) CreateIntent(order *model.Order) (*model.PaymentIntent, error) {
	n := g.intents.Add(1)
	return &model.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", n),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", n),
		Status:       "requires_payment_method",
		Amount:       AmountCents(order),
		Currency:     order.Currency,
	}, nil
}

func (g *fakeGateway) RetrieveIntent(intentID string) (*model.PaymentIntent, error) {
	return &model.PaymentIntent{ID: intentID, Status: "succeeded"}, nil
}

func (g *fakeGateway) CreateRefund(intentID string, amount int64) (*model.Refund, error) {
	if g.failRefunds {
		return nil, fmt.Errorf("refund rejected for %s", intentID)
	}
	n := g.refunds.Add(1)
	return &model.Refund{ID: fmt.Sprintf("re_test_%d", n), Status: "succeeded", Amount: amount}, nil
}

package helper

import (
	"strings"
	"time"

	"easyticket/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// pendingOrderTTL bounds how long an unpaid reservation stays actionable.
const pendingOrderTTL = 30 * time.Minute

// NewOrderNumber builds a short human-readable order reference.
func NewOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "OE-" + id[:12]
}

// BuildOrder validates a reservation request against the catalog and creates
// a pending order with priced, snapshotted items. Capacity is checked under
// a row lock but NOT debited here; the debit happens once, on confirmation.
func BuildOrder(db *gorm.DB, buyer model.Buyer, input *model.CreateOrderInput) (*model.Order, error) {
	now := time.Now()

	var order *model.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.First(&event, input.EventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return Validationf("event %d not found", input.EventID)
			}
			return err
		}
		if !event.IsPublished() {
			return Validationf("event %q is not open for sale", event.Title)
		}
		if event.HasEnded(now) {
			return Validationf("event %q has already ended", event.Title)
		}

		subtotal := decimal.Zero
		items := make([]model.OrderItem, 0, len(input.Items))
		for _, in := range input.Items {
			line, err := ResolveLine(tx, in, event.ID, now)
			if err != nil {
				return err
			}
			item := model.OrderItem{
				TicketTypeID:   line.TicketType.ID,
				TicketTierID:   line.TicketTierID,
				DayPassID:      line.DayPassID,
				DayTierPriceID: line.DayTierPriceID,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice,
				Subtotal:       line.Subtotal(),
				TicketName:     line.TicketType.Name,
				TierName:       line.TierName,
				DayName:        line.DayName,
			}
			items = append(items, item)
			subtotal = subtotal.Add(item.Subtotal)
		}

		fee := ServiceFee(subtotal)
		// Promo codes are recorded for reporting; no discount engine yet.
		discount := decimal.Zero

		expires := now.Add(pendingOrderTTL)
		o := model.Order{
			OrderNumber:    NewOrderNumber(),
			UserID:         buyer.UserID,
			EventID:        event.ID,
			Status:         model.OrderPending,
			Subtotal:       subtotal,
			ServiceFee:     fee,
			DiscountAmount: discount,
			TotalAmount:    OrderTotal(subtotal, fee, discount),
			Currency:       event.Currency,
			BuyerEmail:     buyer.Email,
			BuyerName:      buyer.Name,
			BuyerPhone:     input.BuyerPhone,
			PromoCode:      input.PromoCode,
			Notes:          input.Notes,
			ExpiresAt:      &expires,
			Items:          items,
		}
		// Contact overrides from the request win over the JWT identity.
		if input.BuyerEmail != "" {
			o.BuyerEmail = input.BuyerEmail
		}
		if input.BuyerName != "" {
			o.BuyerName = input.BuyerName
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

package helper

import (
	"time"

	"easyticket/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolvedLine is one priced order line: the unit price, the name snapshots
// for the order item, and the inventory units the line debits when the order
// is confirmed.
type ResolvedLine struct {
	TicketType     *model.TicketType
	TicketTierID   *uint
	DayPassID      *uint
	DayTierPriceID *uint

	Quantity  uint
	UnitPrice decimal.Decimal
	TierName  string
	DayName   string

	// Units holds every inventory unit the line consumes, in debit order.
	Units []model.InventoryUnit
}

func (l *ResolvedLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// lockForUpdate adds a row lock on dialects that support it. sqlite (used by
// the tests) has no FOR UPDATE; its single writer gives the same guarantee.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ResolveLine loads and validates one requested line against the catalog.
// It is the only place that branches on the pricing shape: every caller gets
// back a uniform ResolvedLine regardless of how the type is priced.
//
// The ticket type row is locked for the duration of the transaction so that
// two concurrent orders for the same type serialize their capacity checks.
func ResolveLine(tx *gorm.DB, in model.OrderLineInput, eventID uint, now time.Time) (*ResolvedLine, error) {
	var tt model.TicketType
	if err := lockForUpdate(tx).First(&tt, in.TicketTypeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Validationf("ticket type %d not found", in.TicketTypeID)
		}
		return nil, err
	}
	if tt.EventID != eventID {
		return nil, Validationf("ticket type %d does not belong to this event", tt.ID)
	}
	if !tt.OnSale(now) {
		return nil, Validationf("%s is not on sale", tt.Name)
	}
	if in.Quantity < tt.MinPurchase || in.Quantity > tt.MaxPurchase {
		return nil, Validationf("quantity for %s must be between %d and %d", tt.Name, tt.MinPurchase, tt.MaxPurchase)
	}

	line := &ResolvedLine{TicketType: &tt, Quantity: in.Quantity}

	switch tt.PricingType {
	case model.PricingSimple:
		if in.TicketTierID != nil || in.DayPassID != nil {
			return nil, Validationf("%s does not take a tier or day selection", tt.Name)
		}
		line.UnitPrice = tt.Price
		line.Units = []model.InventoryUnit{&tt}

	case model.PricingTiered:
		if in.TicketTierID == nil {
			return nil, Validationf("%s requires a tier selection", tt.Name)
		}
		if in.DayPassID != nil {
			return nil, Validationf("%s does not take a day selection", tt.Name)
		}
		tier, err := loadTier(tx, tt.ID, *in.TicketTierID)
		if err != nil {
			return nil, err
		}
		line.TicketTierID = &tier.ID
		line.TierName = tier.Name
		line.UnitPrice = tier.Price
		line.Units = []model.InventoryUnit{tier, &tt}

	case model.PricingDayBased:
		if in.DayPassID == nil {
			return nil, Validationf("%s requires a day selection", tt.Name)
		}
		if in.TicketTierID != nil {
			return nil, Validationf("%s does not take a tier selection", tt.Name)
		}
		day, err := loadDayPass(tx, tt.ID, *in.DayPassID)
		if err != nil {
			return nil, err
		}
		line.DayPassID = &day.ID
		line.DayName = day.Name
		line.UnitPrice = day.Price
		line.Units = []model.InventoryUnit{day, &tt}

	case model.PricingTierAndDay:
		// The request names a tier and a day; the matrix cell they address
		// is the priced and debited unit. The cell price stands alone.
		if in.TicketTierID == nil || in.DayPassID == nil {
			return nil, Validationf("%s requires both a tier and a day selection", tt.Name)
		}
		tier, err := loadTier(tx, tt.ID, *in.TicketTierID)
		if err != nil {
			return nil, err
		}
		day, err := loadDayPass(tx, tt.ID, *in.DayPassID)
		if err != nil {
			return nil, err
		}
		if day.DayNumber == nil {
			return nil, Validationf("%s: an all-days pass cannot address a day/tier price", tt.Name)
		}
		var cell model.DayTierPrice
		err = tx.Where("ticket_type_id = ? AND day_number = ? AND tier_number = ?",
			tt.ID, *day.DayNumber, tier.TierNumber).First(&cell).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, Validationf("%s has no price for %s / %s", tt.Name, day.Name, tier.Name)
			}
			return nil, err
		}
		if !cell.OnSale(now) {
			return nil, Validationf("%s / %s is not on sale", cell.DayName, cell.TierName)
		}
		line.TicketTierID = &tier.ID
		line.DayPassID = &day.ID
		line.DayTierPriceID = &cell.ID
		line.TierName = cell.TierName
		line.DayName = cell.DayName
		line.UnitPrice = cell.Price
		// The cell is the sole debit target; the type's own counter is not
		// touched for this shape.
		line.Units = []model.InventoryUnit{&cell}

	default:
		return nil, Validationf("ticket type %d has unknown pricing type %q", tt.ID, tt.PricingType)
	}

	for _, u := range line.Units {
		if model.AvailableOf(u) < in.Quantity {
			return nil, Validationf("%s: only %d left", u.UnitLabel(), model.AvailableOf(u))
		}
	}
	return line, nil
}

func loadTier(tx *gorm.DB, typeID, tierID uint) (*model.TicketTier, error) {
	var tier model.TicketTier
	if err := tx.Where("id = ? AND ticket_type_id = ?", tierID, typeID).First(&tier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Validationf("tier %d not found for this ticket type", tierID)
		}
		return nil, err
	}
	return &tier, nil
}

func loadDayPass(tx *gorm.DB, typeID, dayID uint) (*model.DayPass, error) {
	var day model.DayPass
	if err := tx.Where("id = ? AND ticket_type_id = ?", dayID, typeID).First(&day).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Validationf("day pass %d not found for this ticket type", dayID)
		}
		return nil, err
	}
	return &day, nil
}

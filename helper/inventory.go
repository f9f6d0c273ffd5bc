package helper

import (
	"easyticket/model"

	"gorm.io/gorm"
)

// Inventory debits and credits run through column-level SQL arithmetic, not
// read-modify-write, so concurrent orders never lose an update. There is one
// code path for all four unit kinds.

func debitUnit(tx *gorm.DB, u model.InventoryUnit, qty uint) error {
	return tx.Model(u).
		Update("quantity_sold", gorm.Expr("quantity_sold + ?", qty)).Error
}

// creditUnit floors the counter at zero. CASE WHEN instead of GREATEST keeps
// it portable across postgres and sqlite.
func creditUnit(tx *gorm.DB, u model.InventoryUnit, qty uint) error {
	return tx.Model(u).
		Update("quantity_sold",
			gorm.Expr("CASE WHEN quantity_sold >= ? THEN quantity_sold - ? ELSE 0 END", qty, qty)).Error
}

// unitsForItem reloads the inventory units an already-persisted order item
// resolved to. Used by credit paths, where the original ResolvedLine is gone.
func unitsForItem(tx *gorm.DB, item *model.OrderItem) ([]model.InventoryUnit, error) {
	if item.DayTierPriceID != nil {
		var cell model.DayTierPrice
		if err := tx.First(&cell, *item.DayTierPriceID).Error; err != nil {
			return nil, err
		}
		return []model.InventoryUnit{&cell}, nil
	}

	var tt model.TicketType
	if err := tx.First(&tt, item.TicketTypeID).Error; err != nil {
		return nil, err
	}
	units := []model.InventoryUnit{}
	if item.TicketTierID != nil {
		var tier model.TicketTier
		if err := tx.First(&tier, *item.TicketTierID).Error; err != nil {
			return nil, err
		}
		units = append(units, &tier)
	}
	if item.DayPassID != nil {
		var day model.DayPass
		if err := tx.First(&day, *item.DayPassID).Error; err != nil {
			return nil, err
		}
		units = append(units, &day)
	}
	return append(units, &tt), nil
}

// DebitOrderItems applies the capacity debit for every item of an order.
// It re-validates remaining capacity under lock first: pending orders hold
// nothing, so the check at reservation time may be stale by now.
func DebitOrderItems(tx *gorm.DB, order *model.Order) error {
	for i := range order.Items {
		item := &order.Items[i]
		units, err := unitsForItem(tx, item)
		if err != nil {
			return err
		}
		for _, u := range units {
			if err := lockForUpdate(tx).First(u, u.PrimaryID()).Error; err != nil {
				return err
			}
			if model.AvailableOf(u) < item.Quantity {
				return Validationf("%s: only %d left", u.UnitLabel(), model.AvailableOf(u))
			}
		}
		for _, u := range units {
			if err := debitUnit(tx, u, item.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreditOrderItems reverses the debit of a confirmed order on refund,
// cancellation, or administrative deletion.
func CreditOrderItems(tx *gorm.DB, order *model.Order) error {
	for i := range order.Items {
		item := &order.Items[i]
		units, err := unitsForItem(tx, item)
		if err != nil {
			return err
		}
		for _, u := range units {
			if err := creditUnit(tx, u, item.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

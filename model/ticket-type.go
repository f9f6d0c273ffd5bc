package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing shapes. Each ticket type declares exactly one; the resolver in
// helper/pricing.go is the only place that branches on it.
const (
	PricingSimple     = "simple"
	PricingTiered     = "tiered"
	PricingDayBased   = "day_based"
	PricingTierAndDay = "tier_and_day"
)

// InventoryUnit is any row that carries its own capacity and sold counter:
// the ticket type itself, a tier, a day pass, or a day+tier cell. The
// inventory ledger debits and credits through this interface so there is a
// single code path for all four.
type InventoryUnit interface {
	PrimaryID() uint
	UnitLabel() string
	CapacityTotal() uint
	SoldCount() uint
}

// AvailableOf returns the remaining capacity of a unit, floored at zero.
func AvailableOf(u InventoryUnit) uint {
	if u.SoldCount() >= u.CapacityTotal() {
		return 0
	}
	return u.CapacityTotal() - u.SoldCount()
}

type TicketType struct {
	DTO
	EventID     uint   `gorm:"not null;index" json:"eventId"`
	Event       Event  `json:"-"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `json:"description"`
	PricingType string `gorm:"size:20;default:'simple'" json:"pricingType"`

	// Price applies to the simple shape only; other shapes price their
	// child units.
	Price decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`

	TotalQuantity uint `gorm:"not null" json:"totalQuantity"`
	QuantitySold  uint `gorm:"default:0" json:"quantitySold"`

	SalesStart *time.Time `json:"salesStart,omitempty"`
	SalesEnd   *time.Time `json:"salesEnd,omitempty"`

	MinPurchase uint `gorm:"default:1" json:"minPurchase"`
	MaxPurchase uint `gorm:"default:10" json:"maxPurchase"`

	IsActive bool `gorm:"default:true" json:"isActive"`

	Tiers         []TicketTier   `gorm:"foreignKey:TicketTypeID" json:"tiers,omitempty"`
	DayPasses     []DayPass      `gorm:"foreignKey:TicketTypeID" json:"dayPasses,omitempty"`
	DayTierPrices []DayTierPrice `gorm:"foreignKey:TicketTypeID" json:"dayTierPrices,omitempty"`
}

func (t *TicketType) PrimaryID() uint     { return t.ID }
func (t *TicketType) UnitLabel() string   { return t.Name }
func (t *TicketType) CapacityTotal() uint { return t.TotalQuantity }
func (t *TicketType) SoldCount() uint     { return t.QuantitySold }

// OnSale checks the active flag and the optional sale window. Sold-out is
// checked separately per implicated unit.
func (t *TicketType) OnSale(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	if t.SalesStart != nil && now.Before(*t.SalesStart) {
		return false
	}
	if t.SalesEnd != nil && now.After(*t.SalesEnd) {
		return false
	}
	return true
}

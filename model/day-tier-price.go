package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayTierPrice is one cell of the day×tier pricing matrix used by the
// tier_and_day shape. The cell's price stands on its own; it is never the
// sum of a tier price and a day price.
type DayTierPrice struct {
	DTO
	TicketTypeID uint       `gorm:"not null;uniqueIndex:idx_day_tier,priority:1" json:"ticketTypeId"`
	TicketType   TicketType `json:"-"`

	DayNumber uint       `gorm:"not null;uniqueIndex:idx_day_tier,priority:2" json:"dayNumber"`
	DayName   string     `gorm:"size:50;not null" json:"dayName"`
	Date      *time.Time `json:"date,omitempty"`

	TierNumber uint   `gorm:"not null;uniqueIndex:idx_day_tier,priority:3" json:"tierNumber"`
	TierName   string `gorm:"size:50;not null" json:"tierName"`

	Price decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`

	Quantity     uint `gorm:"not null" json:"quantity"`
	QuantitySold uint `gorm:"default:0" json:"quantitySold"`

	SalesStart *time.Time `json:"salesStart,omitempty"`
	SalesEnd   *time.Time `json:"salesEnd,omitempty"`

	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (d *DayTierPrice) PrimaryID() uint     { return d.ID }
func (d *DayTierPrice) UnitLabel() string   { return d.DayName + " " + d.TierName }
func (d *DayTierPrice) CapacityTotal() uint { return d.Quantity }
func (d *DayTierPrice) SoldCount() uint     { return d.QuantitySold }

func (d *DayTierPrice) OnSale(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.SalesStart != nil && now.Before(*d.SalesStart) {
		return false
	}
	if d.SalesEnd != nil && now.After(*d.SalesEnd) {
		return false
	}
	return true
}

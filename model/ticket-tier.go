package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketTier struct {
	DTO
	TicketTypeID uint       `gorm:"not null;uniqueIndex:idx_tier_number,priority:1" json:"ticketTypeId"`
	TicketType   TicketType `json:"-"`

	TierNumber uint            `gorm:"not null;uniqueIndex:idx_tier_number,priority:2" json:"tierNumber"`
	Name       string          `gorm:"size:50;not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`

	Quantity     uint `gorm:"not null" json:"quantity"`
	QuantitySold uint `gorm:"default:0" json:"quantitySold"`

	SalesStart *time.Time `json:"salesStart,omitempty"`
	SalesEnd   *time.Time `json:"salesEnd,omitempty"`
}

func (t *TicketTier) PrimaryID() uint     { return t.ID }
func (t *TicketTier) UnitLabel() string   { return t.Name }
func (t *TicketTier) CapacityTotal() uint { return t.Quantity }
func (t *TicketTier) SoldCount() uint     { return t.QuantitySold }

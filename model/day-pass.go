package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DayPass struct {
	DTO
	TicketTypeID uint       `gorm:"not null;index" json:"ticketTypeId"`
	TicketType   TicketType `json:"-"`

	// DayNumber is nil for an "All Days" pass.
	DayNumber *uint           `json:"dayNumber,omitempty"`
	Name      string          `gorm:"size:50;not null" json:"name"`
	Date      *time.Time      `json:"date,omitempty"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`

	Quantity     uint `gorm:"not null" json:"quantity"`
	QuantitySold uint `gorm:"default:0" json:"quantitySold"`

	IsAllDays bool `gorm:"default:false" json:"isAllDays"`
}

func (d *DayPass) PrimaryID() uint     { return d.ID }
func (d *DayPass) UnitLabel() string   { return d.Name }
func (d *DayPass) CapacityTotal() uint { return d.Quantity }
func (d *DayPass) SoldCount() uint     { return d.QuantitySold }

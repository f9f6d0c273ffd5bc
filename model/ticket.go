package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TicketActive    = "active"
	TicketUsed      = "used"
	TicketCancelled = "cancelled"
	TicketExpired   = "expired"
)

// Ticket is one redeemable unit, materialized when its order is confirmed.
type Ticket struct {
	DTO
	TicketNumber string `gorm:"size:30;uniqueIndex" json:"ticketNumber"`

	OrderItemID uint      `gorm:"not null;index" json:"orderItemId"`
	OrderItem   OrderItem `json:"-"`
	OrderID     uint      `gorm:"not null;index" json:"orderId"`
	EventID     uint      `gorm:"not null;index" json:"eventId"`
	Event       Event     `json:"-"`

	TicketTypeID   uint  `gorm:"not null" json:"ticketTypeId"`
	TicketTierID   *uint `json:"ticketTierId,omitempty"`
	DayPassID      *uint `json:"dayPassId,omitempty"`
	DayTierPriceID *uint `json:"dayTierPriceId,omitempty"`

	// Snapshots taken at creation; later catalog edits never apply.
	TicketName string          `gorm:"size:255" json:"ticketName"`
	TierName   string          `gorm:"size:100" json:"tierName"`
	DayName    string          `gorm:"size:100" json:"dayName"`
	EventDate  time.Time       `json:"eventDate"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`

	// QRCodeData is the redemption code rendered into the QR image.
	QRCodeData string `gorm:"size:255;uniqueIndex" json:"qrCodeData"`

	Status    string     `gorm:"size:20;default:'active';index" json:"status"`
	IsUsed    bool       `gorm:"default:false" json:"isUsed"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ScannedBy *uint      `json:"scannedBy,omitempty"`
}

func (t *Ticket) FullTicketName() string {
	name := t.TicketName
	if t.TierName != "" {
		name += " - " + t.TierName
	}
	if t.DayName != "" {
		name += " - " + t.DayName
	}
	return name
}

type VerifyTicketInput struct {
	QRCodeData string `json:"qrCodeData" validate:"required"`
}

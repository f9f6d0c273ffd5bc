package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderConfirmed  = "confirmed"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"
	OrderFailed     = "failed"
)

type Order struct {
	DTO
	OrderNumber string `gorm:"size:20;uniqueIndex" json:"orderNumber"`
	UserID      uint   `gorm:"index" json:"userId"`
	EventID     uint   `gorm:"not null;index" json:"eventId"`
	Event       Event  `json:"-"`

	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	ServiceFee     decimal.Decimal `gorm:"type:decimal(10,2)" json:"serviceFee"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"discountAmount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"totalAmount"`
	Currency       string          `gorm:"size:3;default:'USD'" json:"currency"`

	PaymentMethod string     `gorm:"size:20;default:'pending'" json:"paymentMethod"`
	PaymentID     string     `gorm:"size:255;index" json:"paymentId"` // gateway intent id
	PaidAt        *time.Time `json:"paidAt,omitempty"`

	BuyerEmail string `gorm:"size:255" json:"buyerEmail"`
	BuyerPhone string `gorm:"size:20" json:"buyerPhone"`
	BuyerName  string `gorm:"size:255" json:"buyerName"`

	PromoCode          string     `gorm:"size:50" json:"promoCode"`
	Notes              string     `json:"notes"`
	CancellationReason string     `json:"cancellationReason"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	// ExpiresAt is set only while the order is pending.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	Items   []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Tickets []Ticket    `gorm:"foreignKey:OrderID" json:"tickets,omitempty"`
}

func (o *Order) IsPaid() bool { return o.Status == OrderConfirmed }

func (o *Order) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && now.After(*o.ExpiresAt)
}

func (o *Order) TotalTickets() uint {
	var n uint
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

type OrderItem struct {
	DTO
	OrderID uint  `gorm:"not null;index" json:"orderId"`
	Order   Order `json:"-"`

	TicketTypeID   uint  `gorm:"not null" json:"ticketTypeId"`
	TicketTierID   *uint `json:"ticketTierId,omitempty"`
	DayPassID      *uint `json:"dayPassId,omitempty"`
	DayTierPriceID *uint `json:"dayTierPriceId,omitempty"`

	Quantity  uint            `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"unitPrice"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`

	// Name snapshots taken at purchase time; catalog edits never touch them.
	TicketName string `gorm:"size:255" json:"ticketName"`
	TierName   string `gorm:"size:100" json:"tierName"`
	DayName    string `gorm:"size:100" json:"dayName"`
}

func (i *OrderItem) FullTicketName() string {
	name := i.TicketName
	if i.TierName != "" {
		name += " - " + i.TierName
	}
	if i.DayName != "" {
		name += " - " + i.DayName
	}
	return name
}

type OrderLineInput struct {
	TicketTypeID uint  `json:"ticketTypeId" validate:"required,gt=0"`
	TicketTierID *uint `json:"ticketTierId" validate:"omitempty,gt=0"`
	DayPassID    *uint `json:"dayPassId" validate:"omitempty,gt=0"`
	Quantity     uint  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderInput struct {
	EventID    uint             `json:"eventId" validate:"required,gt=0"`
	Items      []OrderLineInput `json:"items" validate:"required,min=1,dive"`
	BuyerEmail string           `json:"buyerEmail" validate:"omitempty,email"`
	BuyerPhone string           `json:"buyerPhone" validate:"omitempty,max=20"`
	BuyerName  string           `json:"buyerName" validate:"omitempty,max=255"`
	PromoCode  string           `json:"promoCode" validate:"omitempty,max=50"`
	Notes      string           `json:"notes" validate:"omitempty,max=2000"`
}

type CancelOrderInput struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

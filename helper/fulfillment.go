package helper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"easyticket/config"
	"easyticket/model"
	"easyticket/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const codeRetryLimit = 5

// NewTicketNumber builds a unique human-readable ticket reference.
func NewTicketNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TKT-" + id[:16]
}

// redemptionCode derives the value rendered into the QR image: an HMAC over
// the ticket number and issue timestamp, keyed by TICKET_SECRET. Uniqueness
// is ultimately enforced by the column constraint, not the hash.
func redemptionCode(ticketNumber string, issuedAt time.Time) string {
	secret := config.ConfigOr("TICKET_SECRET", "easyticket-dev-secret")
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%d", ticketNumber, issuedAt.UnixNano())
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateTicketsForOrder materializes one ticket per purchased unit with
// snapshotted names and price. A redemption code collision is retried with a
// fresh ticket number.
func CreateTicketsForOrder(tx *gorm.DB, order *model.Order) ([]model.Ticket, error) {
	var event model.Event
	if err := tx.First(&event, order.EventID).Error; err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, 0, order.TotalTickets())
	for i := range order.Items {
		item := &order.Items[i]
		for q := uint(0); q < item.Quantity; q++ {
			t, err := createTicket(tx, order, item, &event)
			if err != nil {
				return nil, err
			}
			tickets = append(tickets, *t)
		}
	}
	return tickets, nil
}

func createTicket(tx *gorm.DB, order *model.Order, item *model.OrderItem, event *model.Event) (*model.Ticket, error) {
	var lastErr error
	for attempt := 0; attempt < codeRetryLimit; attempt++ {
		number := NewTicketNumber()
		t := model.Ticket{
			TicketNumber:   number,
			OrderItemID:    item.ID,
			OrderID:        order.ID,
			EventID:        event.ID,
			TicketTypeID:   item.TicketTypeID,
			TicketTierID:   item.TicketTierID,
			DayPassID:      item.DayPassID,
			DayTierPriceID: item.DayTierPriceID,
			TicketName:     item.TicketName,
			TierName:       item.TierName,
			DayName:        item.DayName,
			EventDate:      event.StartDate,
			Price:          item.UnitPrice,
			QRCodeData:     redemptionCode(number, time.Now()),
			Status:         model.TicketActive,
		}
		err := tx.Create(&t).Error
		if err == nil {
			return &t, nil
		}
		if !utils.IsDuplicateKey(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("could not allocate a unique ticket code: %w", lastErr)
}

// MarkTicketUsed redeems a ticket at the gate. It is one-way: allowed only
// while the ticket is active, unused, and the event has not ended. The
// conditional update makes a concurrent double scan lose cleanly.
func MarkTicketUsed(db *gorm.DB, qrCodeData string, staffID uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("qr_code_data = ?", qrCodeData).First(&ticket).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return Validationf("ticket not found")
			}
			return err
		}
		var event model.Event
		if err := tx.First(&event, ticket.EventID).Error; err != nil {
			return err
		}
		if event.HasEnded(time.Now()) {
			return Validationf("event has ended, ticket can no longer be used")
		}
		if ticket.Status != model.TicketActive || ticket.IsUsed {
			return Conflictf("ticket %s is %s and cannot be used", ticket.TicketNumber, ticket.Status)
		}

		now := time.Now()
		res := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ? AND is_used = ?", ticket.ID, model.TicketActive, false).
			Updates(map[string]any{
				"status":     model.TicketUsed,
				"is_used":    true,
				"used_at":    now,
				"scanned_by": staffID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Conflictf("ticket %s was already used", ticket.TicketNumber)
		}
		ticket.Status = model.TicketUsed
		ticket.IsUsed = true
		ticket.UsedAt = &now
		ticket.ScannedBy = &staffID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

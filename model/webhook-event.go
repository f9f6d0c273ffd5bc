package model

import "time"

// WebhookEvent is the idempotency ledger for gateway events. A row for an
// event id means that event's side effects have already been applied; the
// unique index makes a concurrent duplicate claim fail at insert time.
type WebhookEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"size:255;uniqueIndex;not null" json:"eventId"`
	EventType   string    `gorm:"size:100" json:"eventType"`
	Payload     string    `json:"payload"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processedAt"`
}

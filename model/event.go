package model

import "time"

const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

type EventCategory struct {
	DTO
	Name     string `gorm:"size:100;unique" json:"name"`
	Slug     string `gorm:"size:100;unique" json:"slug"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

type Event struct {
	DTO
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Description string     `json:"description"`
	OrganizerID uint       `json:"organizerId"`
	CategoryID  *uint      `json:"categoryId,omitempty"`
	Category    *EventCategory `json:"category,omitempty"`
	VenueName   string     `gorm:"size:255" json:"venueName"`
	VenueCity   string     `gorm:"size:100" json:"venueCity"`
	StartDate   time.Time  `gorm:"not null" json:"startDate"`
	EndDate     time.Time  `gorm:"not null" json:"endDate"`
	Status      string     `gorm:"size:20;default:'draft';index" json:"status"`
	Currency    string     `gorm:"size:3;default:'USD'" json:"currency"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	TicketTypes []TicketType `gorm:"foreignKey:EventID" json:"ticketTypes,omitempty"`
}

func (e *Event) IsPublished() bool {
	return e.Status == EventPublished
}

// HasEnded reports whether the event end time has passed; tickets for an
// ended event can no longer be scanned.
func (e *Event) HasEnded(now time.Time) bool {
	return !e.EndDate.IsZero() && now.After(e.EndDate)
}

package model

import "time"

type DTO struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	Limit *int `json:"limit"`
	Page  *int `json:"page"`
}

type TokenClaim struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"` // attendee, organizer, staff
}

// Buyer is the identity a reservation is created for, taken from the JWT.
type Buyer struct {
	UserID uint
	Email  string
	Name   string
}

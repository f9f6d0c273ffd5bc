package database

import (
	"easyticket/model"
	"log"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func parseDate(dateStr string) time.Time {
	t, _ := time.Parse("2006-01-02", dateStr)
	return t
}

func SeedData(db *gorm.DB) {
	categories := []model.EventCategory{
		{Name: "Music", Slug: "music", IsActive: true},
		{Name: "Conference", Slug: "conference", IsActive: true},
		{Name: "Sports", Slug: "sports", IsActive: true},
	}
	for i := range categories {
		if err := db.Where(model.EventCategory{Slug: categories[i].Slug}).
			FirstOrCreate(&categories[i]).Error; err != nil {
			log.Println("failed to seed category:", categories[i].Name, "error:", err)
		}
	}

	now := time.Now()
	events := []model.Event{
		{
			Title:       "Summer Beats Festival",
			Slug:        slug.Make("Summer Beats Festival"),
			Description: "Three days of live music across four stages.",
			OrganizerID: 1,
			CategoryID:  &categories[0].ID,
			VenueName:   "Riverside Park",
			VenueCity:   "Austin",
			StartDate:   parseDate("2026-10-09"),
			EndDate:     parseDate("2026-10-11"),
			Status:      model.EventPublished,
			Currency:    "USD",
			PublishedAt: &now,
		},
		{
			Title:       "GopherConf",
			Slug:        slug.Make("GopherConf"),
			Description: "Single-day developer conference.",
			OrganizerID: 1,
			CategoryID:  &categories[1].ID,
			VenueName:   "Downtown Convention Center",
			VenueCity:   "Denver",
			StartDate:   parseDate("2026-11-20"),
			EndDate:     parseDate("2026-11-20"),
			Status:      model.EventPublished,
			Currency:    "USD",
			PublishedAt: &now,
		},
	}
	for i := range events {
		if err := db.Where(model.Event{Slug: events[i].Slug}).
			FirstOrCreate(&events[i]).Error; err != nil {
			log.Println("failed to seed event:", events[i].Title, "error:", err)
		}
	}

	var existing int64
	db.Model(&model.TicketType{}).Count(&existing)
	if existing > 0 {
		return
	}

	// GopherConf: one simple type.
	conf := model.TicketType{
		EventID:       events[1].ID,
		Name:          "General Admission",
		PricingType:   model.PricingSimple,
		Price:         decimal.NewFromInt(120),
		TotalQuantity: 500,
		IsActive:      true,
	}
	if err := db.Create(&conf).Error; err != nil {
		log.Println("failed to seed ticket type:", err)
	}

	// Festival: a day×tier matrix type with its legacy tier/day selectors.
	fest := model.TicketType{
		EventID:       events[0].ID,
		Name:          "Festival Pass",
		PricingType:   model.PricingTierAndDay,
		TotalQuantity: 3000,
		IsActive:      true,
	}
	if err := db.Create(&fest).Error; err != nil {
		log.Println("failed to seed ticket type:", err)
		return
	}
	tiers := []model.TicketTier{
		{TicketTypeID: fest.ID, TierNumber: 1, Name: "VIP", Price: decimal.NewFromInt(150), Quantity: 500},
		{TicketTypeID: fest.ID, TierNumber: 2, Name: "General", Price: decimal.NewFromInt(75), Quantity: 2500},
	}
	day1 := uint(1)
	day2 := uint(2)
	days := []model.DayPass{
		{TicketTypeID: fest.ID, DayNumber: &day1, Name: "Day 1", Quantity: 1500},
		{TicketTypeID: fest.ID, DayNumber: &day2, Name: "Day 2", Quantity: 1500},
	}
	db.Create(&tiers)
	db.Create(&days)
	cells := []model.DayTierPrice{
		{TicketTypeID: fest.ID, DayNumber: 1, DayName: "Day 1", TierNumber: 1, TierName: "VIP", Price: decimal.NewFromInt(150), Quantity: 250, IsActive: true},
		{TicketTypeID: fest.ID, DayNumber: 1, DayName: "Day 1", TierNumber: 2, TierName: "General", Price: decimal.NewFromInt(75), Quantity: 1250, IsActive: true},
		{TicketTypeID: fest.ID, DayNumber: 2, DayName: "Day 2", TierNumber: 1, TierName: "VIP", Price: decimal.NewFromInt(150), Quantity: 250, IsActive: true},
		{TicketTypeID: fest.ID, DayNumber: 2, DayName: "Day 2", TierNumber: 2, TierName: "General", Price: decimal.NewFromInt(75), Quantity: 1250, IsActive: true},
	}
	if err := db.Create(&cells).Error; err != nil {
		log.Println("failed to seed day tier prices:", err)
	}
}

package handler

import (
	"time"

	"easyticket/database"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const catalogCacheTTL = 2 * time.Minute

// GetEventTicketTypes lists a published event's ticket types with their
// tiers, day passes, and matrix cells. Reads go through the catalog cache.
func GetEventTicketTypes(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("eventId")
	if err != nil || eventID <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid event id", err)
	}

	key := utils.CatalogKey(uint(eventID))
	var cached []model.TicketType
	if utils.CacheGet(c.Context(), key, &cached) {
		return utils.SuccessResponse(c, fiber.StatusOK, cached)
	}

	var event model.Event
	if err := database.DB.First(&event, eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "event not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load event", err)
	}
	if !event.IsPublished() {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "event not found", nil)
	}

	var types []model.TicketType
	if err := database.DB.
		Preload("Tiers").
		Preload("DayPasses").
		Preload("DayTierPrices").
		Where("event_id = ? AND is_active = ?", eventID, true).
		Order("id").
		Find(&types).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load ticket types", err)
	}

	utils.CacheSet(c.Context(), key, types, catalogCacheTTL)
	return utils.SuccessResponse(c, fiber.StatusOK, types)
}

// MatrixCell is one entry of the day×tier availability grid.
type MatrixCell struct {
	DayNumber  uint   `json:"dayNumber"`
	DayName    string `json:"dayName"`
	TierNumber uint   `json:"tierNumber"`
	TierName   string `json:"tierName"`
	Price      string `json:"price"`
	Available  uint   `json:"available"`
	OnSale     bool   `json:"onSale"`
}

// GetTicketTypeMatrix returns the full pricing grid of a tier_and_day type,
// one cell per day/tier pair with live availability.
func GetTicketTypeMatrix(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid ticket type id", err)
	}

	var tt model.TicketType
	if err := database.DB.Preload("DayTierPrices").First(&tt, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "ticket type not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "could not load ticket type", err)
	}
	if tt.PricingType != model.PricingTierAndDay {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "ticket type has no day/tier matrix", nil)
	}

	now := time.Now()
	cells := make([]MatrixCell, 0, len(tt.DayTierPrices))
	for i := range tt.DayTierPrices {
		cell := &tt.DayTierPrices[i]
		cells = append(cells, MatrixCell{
			DayNumber:  cell.DayNumber,
			DayName:    cell.DayName,
			TierNumber: cell.TierNumber,
			TierName:   cell.TierName,
			Price:      cell.Price.StringFixed(2),
			Available:  model.AvailableOf(cell),
			OnSale:     cell.OnSale(now),
		})
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"ticketTypeId": tt.ID,
		"name":         tt.Name,
		"cells":        cells,
	})
}

package validate

import (
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
)

func VerifyTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.VerifyTicketInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid request body", err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}
		c.Locals("input", &input)
		return c.Next()
	}
}

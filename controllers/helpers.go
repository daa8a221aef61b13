package controller

import (
	"github.com/gofiber/fiber/v2"

	"reachround/utils"
)

// currentUserID reads the id stored by middleware.Protected.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, ok := utils.ParseUint(c.Params(name))
	if !ok {
		return 0, utils.Validation("Invalid " + name)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.Validation("Invalid request body")
	}
	return nil
}

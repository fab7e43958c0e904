package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docuvault/internal/service"
)

// ListCommunities returns the community directory.
func ListCommunities(svc service.CommunityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		communities, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": communities})
	}
}

// GetCommunity returns one community by its number.
func GetCommunity(svc service.CommunityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, err := strconv.Atoi(c.Params("number"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_NUMBER", "invalid community number")
		}

		community, err := svc.GetByNumber(c.UserContext(), number)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(community)
	}
}

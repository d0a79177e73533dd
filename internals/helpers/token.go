package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// GetUserIDFromLocals reads the authenticated user id stored by the auth middleware.
func GetUserIDFromLocals(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals("user_id").(uint)
	if !ok || id == 0 {
		return 0, errors.New("missing user id in context")
	}
	return id, nil
}

// GetRoleFromLocals reads the caller role stored by the auth middleware.
func GetRoleFromLocals(c *fiber.Ctx) (string, error) {
	role, ok := c.Locals("userRole").(string)
	if !ok || role == "" {
		return "", errors.New("missing role in context")
	}
	return role, nil
}

// GetUsernameFromLocals reads the caller username stored by the auth middleware.
func GetUsernameFromLocals(c *fiber.Ctx) string {
	name, _ := c.Locals("user_name").(string)
	return name
}

package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
)

// GetUserUUID returns the authenticated user's id set by the auth middleware,
// or nil for anonymous calls.
func GetUserUUID(c *fiber.Ctx) *uuid.UUID {
	raw, ok := c.Locals(LocUserID).(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocUserRole).(string)
	return role
}

// ParseIDParam reads a positive integer route param.
func ParseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}

func ParseIntParam(c *fiber.Ctx, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

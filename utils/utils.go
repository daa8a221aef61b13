package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// NilIfEmpty returns nil for an empty string so optional columns stay NULL.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data fiber.Map) fiber.Map {
	out := fiber.Map{"success": true}
	for k, v := range data {
		out[k] = v
	}
	return out
}

// ParseUint safely parses a string to uint, returning false when it is not a positive id.
func ParseUint(s string) (uint, bool) {
	i, err := strconv.ParseUint(s, 10, 32)
	if err != nil || i == 0 {
		return 0, false
	}
	return uint(i), true
}

// ParseUintPtr parses an optional id from a query string.
func ParseUintPtr(s string) (*uint, bool) {
	if s == "" {
		return nil, true
	}
	id, ok := ParseUint(s)
	if !ok {
		return nil, false
	}
	return &id, true
}

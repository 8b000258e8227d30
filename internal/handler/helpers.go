package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumina-dashboard-api/internal/service"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

func organizationIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("organization_id").(string); ok {
		return id
	}
	return ""
}

// scopeFromContext assembles the tenant scope resolved by the session and
// organization middlewares.
func scopeFromContext(c *fiber.Ctx) service.Scope {
	return service.Scope{
		OrganizationID: organizationIDFromContext(c),
		UserID:         userIDFromContext(c),
	}
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

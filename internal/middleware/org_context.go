package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-dashboard-api/internal/repository"
	"github.com/noah-isme/lumina-dashboard-api/internal/utils"
)

// OrganizationContext resolves the :slug route segment into an organization,
// verifies the authenticated user is a member, and stores the tenant scope in
// request locals. Must run after JWTProtected.
func OrganizationContext(organizations repository.OrganizationRepository, memberships repository.MembershipRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		if slug == "" {
			return utils.SendError(c, fiber.StatusBadRequest, "organization slug missing")
		}

		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		organization, err := organizations.GetBySlug(c.Context(), slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusNotFound, "organization not found")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve organization")
		}

		role, err := memberships.GetRole(c.Context(), userID, organization.ID)
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve membership")
		}
		if role == "" {
			return utils.SendError(c, fiber.StatusForbidden, "not a member of this organization")
		}

		c.Locals("organization_id", organization.ID)
		c.Locals("organization_slug", organization.Slug)
		c.Locals("membership_role", role)

		return c.Next()
	}
}
